package server

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/catalog-browser/internal/server/middleware"
	"github.com/nguyentranbao-ct/catalog-browser/internal/usecase"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

const (
	MessageSetFilter = "set_filter"
	MessageNavigate  = "navigate"
	MessageRefresh   = "refresh"
	MessageClear     = "clear"

	MessageState = "state"
	MessageURL   = "url"
	MessageError = "error"
)

// PatchRequest is a partial filter edit. Absent fields are untouched; an
// empty string clears the field.
type PatchRequest struct {
	Page          *int    `json:"page" validate:"omitempty,gte=0"`
	SortBy        *string `json:"sort_by" validate:"omitempty,sort_field"`
	SortDirection *string `json:"sort_direction" validate:"omitempty,sort_direction"`
	Category      *string `json:"category"`
	MinPrice      *string `json:"min_price" validate:"omitempty,price"`
	MaxPrice      *string `json:"max_price" validate:"omitempty,price"`
	SearchTerm    *string `json:"search_term"`
	InStock       *string `json:"in_stock" validate:"omitempty,stock"`
}

// ToPatch assumes the request passed validation.
func (r PatchRequest) ToPatch() models.FilterPatch {
	p := models.FilterPatch{
		Page:       r.Page,
		Category:   r.Category,
		SearchTerm: r.SearchTerm,
	}
	if r.SortBy != nil {
		for _, f := range models.SortFields {
			if strings.EqualFold(*r.SortBy, string(f)) {
				p.SortBy = &f
				break
			}
		}
	}
	if r.SortDirection != nil {
		dir := models.SortDirection(strings.ToUpper(*r.SortDirection))
		p.SortDirection = &dir
	}
	if r.MinPrice != nil {
		v := parsePatchPrice(*r.MinPrice)
		p.MinPrice = &v
	}
	if r.MaxPrice != nil {
		v := parsePatchPrice(*r.MaxPrice)
		p.MaxPrice = &v
	}
	if r.InStock != nil {
		s := models.StockFilter(*r.InStock)
		p.InStock = &s
	}
	return p
}

func parsePatchPrice(s string) decimal.NullDecimal {
	d, err := models.ParsePrice(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

type ClientMessage struct {
	Type   string         `json:"type"`
	Patch  *PatchRequest  `json:"patch,omitempty"`
	Query  string         `json:"query,omitempty"`
	Origin usecase.Origin `json:"origin,omitempty"`
}

type ServerMessage struct {
	Type   string              `json:"type"`
	URL    string              `json:"url"`
	State  *usecase.QueryState `json:"state,omitempty"`
	Window *usecase.PageWindow `json:"window,omitempty"`
	Error  string              `json:"error,omitempty"`

	ActiveFilters bool `json:"has_active_filters,omitempty"`
}

// SocketHandler runs one live browse session per websocket connection.
type SocketHandler struct {
	catalog   usecase.CatalogUsecase
	validator echo.Validator
	upgrader  websocket.Upgrader
	log       *zap.SugaredLogger
}

func NewSocketHandler(conf *config.Config, catalog usecase.CatalogUsecase) (*SocketHandler, error) {
	pattern, err := regexp.Compile(conf.Server.CORSPattern)
	if err != nil {
		return nil, fmt.Errorf("compile cors pattern: %w", err)
	}
	return &SocketHandler{
		catalog:   catalog,
		validator: pkgmdw.NewValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || pattern.MatchString(origin)
			},
		},
		log: logger.MustNamed("socket"),
	}, nil
}

func (h *SocketHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warnw("websocket upgrade failed", "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	s := &liveSession{
		conn:   conn,
		out:    make(chan ServerMessage, 16),
		closed: make(chan struct{}),
		log:    h.log,
	}
	session, err := h.catalog.NewSession(s)
	if err != nil {
		h.log.Errorw("failed to open browse session", "error", err)
		_ = conn.Close()
		return nil
	}
	c.Set(pkgmdw.ContextKeySessionID, session.ID)
	s.log = h.log.With("session_id", session.ID, "request_id", logger.RequestID(ctx))
	s.session = session
	s.log.Infow("browse session opened")

	states, unsubscribe := session.Facade.Subscribe()
	defer unsubscribe()

	go s.writeLoop(ctx, states)

	session.Controller.Load(ctx, c.QueryString())
	s.readLoop(ctx, h.validator)

	cancel()
	<-s.closed
	_ = conn.Close()
	s.log.Infow("browse session closed")
	return nil
}

type liveSession struct {
	conn    *websocket.Conn
	session *usecase.BrowseSession
	out     chan ServerMessage
	closed  chan struct{}
	log     *zap.SugaredLogger
}

// Replace implements usecase.Navigator by telling the client to update its
// address bar.
func (s *liveSession) Replace(ctx context.Context, change usecase.URLChange) {
	s.send(ctx, ServerMessage{Type: MessageURL, URL: change.Query})
}

func (s *liveSession) send(ctx context.Context, msg ServerMessage) {
	select {
	case s.out <- msg:
	case <-s.closed:
	case <-ctx.Done():
	}
}

func (s *liveSession) readLoop(ctx context.Context, v echo.Validator) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctrl := s.session.Controller
	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnw("websocket read failed", "error", err)
			}
			return
		}

		switch msg.Type {
		case MessageSetFilter:
			if msg.Patch == nil {
				s.send(ctx, ServerMessage{Type: MessageError, Error: "patch is required"})
				continue
			}
			if err := v.Validate(msg.Patch); err != nil {
				s.send(ctx, ServerMessage{Type: MessageError, Error: err.Error()})
				continue
			}
			if _, err := ctrl.SetFilter(ctx, msg.Patch.ToPatch()); err != nil {
				s.send(ctx, ServerMessage{Type: MessageError, Error: err.Error()})
			}
		case MessageNavigate:
			origin := msg.Origin
			if origin == "" {
				origin = usecase.OriginNavigation
			}
			ctrl.Navigate(ctx, usecase.URLChange{Query: msg.Query, Origin: origin})
		case MessageRefresh:
			ctrl.Refresh(ctx)
		case MessageClear:
			ctrl.Clear(ctx)
		default:
			s.send(ctx, ServerMessage{Type: MessageError, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
		}
	}
}

// writeLoop is the only writer on the connection. Closing the connection on
// exit unblocks readLoop.
func (s *liveSession) writeLoop(ctx context.Context, states <-chan usecase.QueryState) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		close(s.closed)
	}()

	for {
		var msg ServerMessage
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
			continue
		case st, ok := <-states:
			if !ok {
				return
			}
			window := usecase.NewPageWindow(st.Page)
			msg = ServerMessage{
				Type:   MessageState,
				URL:    s.session.Controller.Query(),
				State:  &st,
				Window: &window,

				ActiveFilters: st.Filter.HasActiveFilters(),
			}
		case msg = <-s.out:
			if msg.URL == "" && msg.Type != MessageURL {
				msg.URL = s.session.Controller.Query()
			}
		}

		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(msg); err != nil {
			s.log.Warnw("websocket write failed", "type", msg.Type, "error", err)
			return
		}
	}
}
