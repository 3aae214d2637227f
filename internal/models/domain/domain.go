package domain

import (
	mapset "github.com/deckarep/golang-set/v2"
)

const (
	Automation        Domain = "automation"
	BinarySensor      Domain = "binary_sensor"
	Button            Domain = "button"
	Climate           Domain = "climate"
	Cover             Domain = "cover"
	DeviceTracker     Domain = "device_tracker"
	Fan               Domain = "fan"
	HomeAssistant     Domain = "homeassistant"
	InputBoolean      Domain = "input_boolean"
	InputDatetime     Domain = "input_datetime"
	InputNumber       Domain = "input_number"
	Light             Domain = "light"
	Lock              Domain = "lock"
	MediaPlayer       Domain = "media_player"
	Person            Domain = "person"
	Scene             Domain = "scene"
	Script            Domain = "script"
	Sensor            Domain = "sensor"
	Sun               Domain = "sun"
	Switch            Domain = "switch"
	Update            Domain = "update"
	WaterHeater       Domain = "water_heater"
	Zone              Domain = "zone"
	Camera            Domain = "camera"
	Notify            Domain = "notify"
	Vacuum            Domain = "vacuum"
	Valve             Domain = "valve"
	Siren             Domain = "siren"
	Humidifier        Domain = "humidifier"
	InputSelect       Domain = "input_select"
	InputText         Domain = "input_text"
	InputButton       Domain = "input_button"
	Number            Domain = "number"
	Select            Domain = "select"
	AlarmControlPanel Domain = "alarm_control_panel"
	PersistentNotify  Domain = "persistent_notification"
	TTS               Domain = "tts"
	Counter           Domain = "counter"
	Timer             Domain = "timer"
)

var validDomains = mapset.NewSet(
	Automation, BinarySensor, Button, Climate, Cover, DeviceTracker, Fan, HomeAssistant, InputBoolean,
	InputDatetime, InputNumber, Light, Lock, MediaPlayer, Person, Scene, Script, Sensor, Sun, Switch,
	Update, WaterHeater, Zone, Camera, Notify, Vacuum, Valve, Siren, Humidifier, InputSelect, InputText,
	InputButton, Number, Select, AlarmControlPanel, PersistentNotify, TTS, Counter, Timer,
)

type Domain string

func (d Domain) String() string { return string(d) }
func (d Domain) IsValid() bool  { return validDomains.Contains(d) }
