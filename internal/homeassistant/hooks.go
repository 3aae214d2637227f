package homeassistant

import (
	"fmt"
	"reflect"
	"time"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/entity"
	"github.com/mitchellh/mapstructure"
)

func StringToEntityIDHookFunc() mapstructure.DecodeHookFunc { //nolint:ireturn
	return func(f reflect.Type, targetType reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		if targetType != reflect.TypeOf(entity.EntityID{}) {
			return data, nil
		}

		if rawEntityID, ok := data.(string); ok {
			return entity.NewEntityID(rawEntityID)
		}

		return nil, models.InvalidEntityIDErr(fmt.Sprint(data))
	}
}

// decode maps a websocket result onto out using the hub's conventions.
func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeHookFunc(time.RFC3339), StringToEntityIDHookFunc()),
		Result:     out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
