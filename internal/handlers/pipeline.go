package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/metrics"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/internal/services"
	"github.com/hightechgrafix/htg-shipping-tools/pkg/lambda"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Action runs an endpoint after the method check and, for admin endpoints,
// after the gate. caller is nil for public endpoints.
type Action func(ctx context.Context, caller *models.AuthorizedCaller, body []byte) (interface{}, error)

// Endpoint describes one route of the API
type Endpoint struct {
	Name   string
	Path   string
	Method string
	Admin  bool
	Action Action

	// MethodMessage is the 405 message; the pricing endpoint keeps its code-style message
	MethodMessage string
}

// API dispatches transport-neutral requests to registered endpoints.
// The Lambda functions and the gin server both drive it.
type API struct {
	gate      *services.Gate
	endpoints map[string]*Endpoint
	order     []*Endpoint
	logger    *logrus.Logger
}

// NewAPI creates an API; gate may be nil when no admin endpoint is registered
func NewAPI(gate *services.Gate, logger *logrus.Logger) *API {
	if logger == nil {
		logger = logrus.New()
	}
	return &API{
		gate:      gate,
		endpoints: make(map[string]*Endpoint),
		logger:    logger,
	}
}

// Register adds endpoints; a later registration for the same path replaces the earlier one
func (a *API) Register(endpoints ...*Endpoint) {
	for _, ep := range endpoints {
		if ep.MethodMessage == "" {
			ep.MethodMessage = "Method not allowed"
		}
		if _, exists := a.endpoints[ep.Path]; !exists {
			a.order = append(a.order, ep)
		} else {
			for i, existing := range a.order {
				if existing.Path == ep.Path {
					a.order[i] = ep
				}
			}
		}
		a.endpoints[ep.Path] = ep
	}
}

// Endpoints returns the registered endpoints in registration order
func (a *API) Endpoints() []*Endpoint {
	return append([]*Endpoint(nil), a.order...)
}

// Dispatch handles one request. It never returns nil and never panics.
func (a *API) Dispatch(ctx context.Context, req *lambda.Request) *lambda.Response {
	resp, _ := a.dispatch(ctx, req)
	return resp
}

// dispatch also returns the authorized caller's ID, empty for public or rejected requests
func (a *API) dispatch(ctx context.Context, req *lambda.Request) (resp *lambda.Response, callerID string) {
	started := time.Now()
	requestID := requestIDFor(req)
	endpointName := "unknown"

	logger := a.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     req.Method,
		"path":       req.Path,
	})

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.WithFields(logrus.Fields{
				"panic": fmt.Sprint(recovered),
				"stack": string(debug.Stack()),
			}).Error("Handler panicked")
			resp = a.renderError(services.NewError(services.CodeInternal, "handler panicked"))
		}
		resp.Headers["X-Request-ID"] = requestID
		metrics.ObserveRequest(endpointName, resp.StatusCode, started)
	}()

	ep, ok := a.lookup(req.Path)
	if !ok {
		return a.renderError(services.NewError(services.CodeNotFound, "no such endpoint")), ""
	}
	endpointName = ep.Name
	logger = logger.WithField("endpoint", ep.Name)

	if !strings.EqualFold(req.Method, ep.Method) {
		resp = a.renderError(services.NewError(services.CodeMethodNotAllowed, ep.MethodMessage))
		resp.Headers["Allow"] = ep.Method
		return resp, ""
	}

	var caller *models.AuthorizedCaller
	if ep.Admin {
		if a.gate == nil {
			logger.Error("Admin endpoint registered without a gate")
			return a.renderError(services.NewError(services.CodeInternal, "gate not configured")), ""
		}
		var err error
		caller, err = a.gate.Authorize(ctx, req.Header("Authorization"))
		if err != nil {
			a.logFailure(logger, err)
			return a.renderError(err), ""
		}
		callerID = caller.ID
		logger = logger.WithField("user_id", caller.ID)
	}

	data, err := ep.Action(ctx, caller, req.Body)
	if err != nil {
		a.logFailure(logger, err)
		return a.renderError(err), callerID
	}

	return a.renderJSON(http.StatusOK, data), callerID
}

func (a *API) lookup(path string) (*Endpoint, bool) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	ep, ok := a.endpoints[path]
	return ep, ok
}

func (a *API) logFailure(logger *logrus.Entry, err error) {
	serviceErr := services.AsError(err)
	entry := logger.WithFields(logrus.Fields{
		"code":  serviceErr.Code(),
		"error": err.Error(),
	})
	if isServerError(err) {
		entry.Error("Request failed")
		return
	}
	entry.Info("Request rejected")
}

func (a *API) renderError(err error) *lambda.Response {
	status, body := newErrorResponse(err)
	return a.renderJSON(status, body)
}

func (a *API) renderJSON(status int, data interface{}) *lambda.Response {
	body, err := json.Marshal(data)
	if err != nil {
		a.logger.WithError(err).Error("Failed to encode response")
		return lambda.NewJSONResponse(http.StatusInternalServerError, []byte(`{"error":"Server error","code":"INTERNAL_ERROR"}`))
	}
	return lambda.NewJSONResponse(status, body)
}

func requestIDFor(req *lambda.Request) string {
	if id := req.Header("X-Request-ID"); id != "" {
		return id
	}
	if req.RequestID != "" {
		return req.RequestID
	}
	return uuid.New().String()
}

// decodeBody decodes a JSON body into v. An empty or malformed body leaves v
// at its zero value so field validation reports the missing fields.
func decodeBody[T any](body []byte) *T {
	v := new(T)
	if len(body) == 0 {
		return v
	}
	decoded := new(T)
	if err := json.Unmarshal(body, decoded); err != nil {
		return v
	}
	return decoded
}
