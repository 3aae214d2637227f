// Package homeassistant talks to the hub: the websocket API for states,
// registries and service calls, and the REST API for automation configs.
package homeassistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benleb/autoscope/internal/icons"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/benleb/autoscope/internal/models/service"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"
)

var (
	defaultTimeout = 10 * time.Second
	readLimit      = int64(8 * 1024 * 1024) // 8mb, get_states on large installs

	// configFetchRate limits REST requests while listing many automations.
	configFetchRate  = rate.Limit(20)
	configFetchBurst = 10
)

// Options configure a Client.
type Options struct {
	URL     string
	Token   string
	Timeout time.Duration

	// HTTPClient is used for the REST API, http.DefaultClient if nil.
	HTTPClient *http.Client
}

// Client is a connection to one hub.
type Client struct {
	wsURL   *url.URL
	httpURL *url.URL
	token   string
	timeout time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter

	// websocket connection
	conn *websocket.Conn
	// lock for writing to the websocket
	wsMutex sync.Mutex

	nonce atomic.Int64

	// result handlers of in-flight requests by message id
	results   map[int64]chan ResultMsg
	resultsMu sync.Mutex

	// closed when the reader stops, readErr says why
	done    chan struct{}
	readErr error

	// printer
	pr *log.Logger
}

// New creates a client and connects to the websocket API.
func New(ctx context.Context, opts Options) (*Client, error) {
	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}

	if err := client.connect(ctx); err != nil {
		return nil, err
	}

	client.pr.Infof("%s Home Assistant client started", icons.GreenTick)

	return client, nil
}

func newClient(opts Options) (*Client, error) {
	// validity check
	if opts.URL == "" {
		return nil, models.ErrEmptyURL
	} else if opts.Token == "" {
		return nil, models.ErrEmptyToken
	}

	// parse http(s) URL
	httpURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	// create websocket URL
	wsURL := *httpURL

	switch httpURL.Scheme {
	case "http":
		wsURL.Scheme = "ws"
	case "https":
		wsURL.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported url scheme: %q", httpURL.Scheme)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		wsURL:   wsURL.JoinPath("/api/websocket"),
		httpURL: httpURL,
		token:   opts.Token,
		timeout: timeout,

		httpClient: httpClient,
		limiter:    rate.NewLimiter(configFetchRate, configFetchBurst),

		results: make(map[int64]chan ResultMsg),
		done:    make(chan struct{}),

		pr: models.Printer.WithPrefix(lipgloss.NewStyle().Foreground(style.HABlue).Render("HA")),
	}, nil
}

func (c *Client) connect(ctx context.Context) error {
	c.pr.Infof("%s connecting to %s", icons.ConnectionChain, c.wsURL.String())

	// create context with timeout
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.wsURL.String(), &websocket.DialOptions{})
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrHubUnreachable, err)
	}

	c.conn = conn

	// increase max size of a message for the connection (in bytes)
	c.conn.SetReadLimit(readLimit)

	// authenticate
	if err := c.authenticate(dialCtx); err != nil {
		_ = c.conn.CloseNow()

		return err
	}

	c.pr.Infof("%s successfully authenticated", icons.Key)

	go c.runReader()

	return nil
}

// authenticate runs the auth handshake of the websocket API.
func (c *Client) authenticate(ctx context.Context) error {
	var versionMsg VersionMsg

	// read first message...
	if err := wsjson.Read(ctx, c.conn, &versionMsg); err != nil {
		return fmt.Errorf("%w: failed to read message: %w", models.ErrHubUnreachable, err)
	}

	// ...which should be the auth_required message
	if versionMsg.Type != "auth_required" {
		return fmt.Errorf("%w: %s", models.ErrUnexpectedMessageType, versionMsg.Type)
	}

	// reply with auth message containing a token
	if err := wsjson.Write(ctx, c.conn, NewAuthMsg(c.token)); err != nil {
		return fmt.Errorf("%w: failed to write message: %w", models.ErrHubUnreachable, err)
	}

	if err := wsjson.Read(ctx, c.conn, &versionMsg); err != nil {
		return fmt.Errorf("%w: failed to read message: %w", models.ErrHubUnreachable, err)
	}

	if versionMsg.Type != "auth_ok" {
		return fmt.Errorf("%w: %s %s", models.ErrHubRequest, versionMsg.Type, versionMsg.Message)
	}

	c.pr.Debugf("%s hub version %s", icons.Home, versionMsg.HaVersion)

	return nil
}

// Close closes the websocket connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close(websocket.StatusNormalClosure, "bye")
	if err != nil {
		c.pr.Debugf("%s failed to gracefully close connection: %+v", icons.RedCross.Render(), err)

		_ = c.conn.CloseNow()
	}

	<-c.done

	return nil
}

func (c *Client) runReader() {
	defer close(c.done)

	err := c.wsReader()
	if errors.Is(err, models.ErrConnectionClosed) {
		c.pr.Debug("websocket closed")
	} else {
		c.pr.Errorf("%s reader error: %+v", icons.Glasses, err)
	}

	c.readErr = err
}

func (c *Client) wsReader() error {
	for {
		var msg map[string]any

		if err := wsjson.Read(context.Background(), c.conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return models.ErrConnectionClosed
			}

			return err
		}

		msgType, _ := msg["type"].(string)

		switch msgType {
		case "result":
			c.handleResultMessage(msg)
		case "pong", "event":
		default:
			c.pr.Warnf("received unexpected %s message: %+v", style.Bold(msgType), msg)
		}
	}
}

// handleResultMessage hands every result, successful or not, to its waiting caller.
func (c *Client) handleResultMessage(msg map[string]any) {
	var resultMsg ResultMsg

	if err := decode(msg, &resultMsg); err != nil {
		c.pr.Errorf("decoding incoming result failed: %+v | msg: %+v", err, msg)

		return
	}

	c.resultsMu.Lock()
	done, ok := c.results[resultMsg.ID]
	delete(c.results, resultMsg.ID)
	c.resultsMu.Unlock()

	if !ok {
		c.pr.Debugf("result without waiting caller: %s", resultMsg.String())

		return
	}

	done <- resultMsg
}

// call sends a message and waits for its result.
func (c *Client) call(ctx context.Context, msg Message) (*ResultMsg, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan ResultMsg, 1)

	msgID, err := c.send(ctx, done, msg)
	if err != nil {
		return nil, err
	}

	select {
	case result := <-done:
		c.pr.Debug(result.String())

		if !result.Success {
			return &result, fmt.Errorf("%w: %s: %s", models.ErrHubRequest, result.Error.Code, result.Error.Message)
		}

		return &result, nil

	case <-c.done:
		return nil, fmt.Errorf("%w: %w", models.ErrHubUnreachable, c.readErr)

	case <-ctx.Done():
		c.resultsMu.Lock()
		delete(c.results, msgID)
		c.resultsMu.Unlock()

		return nil, fmt.Errorf("%w: %w", models.ErrHubUnreachable, ctx.Err())
	}
}

// send writes a message with a fresh id and returns the id.
func (c *Client) send(ctx context.Context, done chan ResultMsg, msg Message) (int64, error) {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	if c.conn == nil {
		return 0, models.ErrNoConnectionToWriteTo
	}

	// add unique message id
	msgID := msg.SetID(c.nonce.Add(1))

	c.resultsMu.Lock()
	c.results[msgID] = done
	c.resultsMu.Unlock()

	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		c.resultsMu.Lock()
		delete(c.results, msgID)
		c.resultsMu.Unlock()

		return 0, fmt.Errorf("%w: %w", models.ErrHubUnreachable, err)
	}

	c.pr.Debugf("%s %s", icons.Call, msg.String())

	return msgID, nil
}

// GetStates returns the current state of every entity.
func (c *Client) GetStates(ctx context.Context) ([]State, error) {
	result, err := c.call(ctx, newMessage("get_states"))
	if err != nil {
		return nil, err
	}

	var states []State
	if err := decode(result.Result, &states); err != nil {
		return nil, fmt.Errorf("%w: decoding get_states result: %w", models.ErrHubRequest, err)
	}

	if len(states) == 0 {
		return nil, models.ErrNoStatesReceived
	}

	return states, nil
}

// CallService calls a service on the given entities.
func (c *Client) CallService(ctx context.Context, dom domain.Domain, svc service.Service, data map[string]any, targets ...string) error {
	_, err := c.call(ctx, NewCallServiceMsg(dom, svc, data, targets...))

	return err
}
