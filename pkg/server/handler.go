package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/common"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/history"
	"github.com/nektos/coerce/pkg/value"
)

const (
	urlBase = "/v1"

	defaultHistoryLimit = 20
	maxBodySize         = 64 << 10
)

type Options struct {
	Env     *exprparser.EvaluationEnvironment
	Config  exprparser.Config
	History *history.Store
	Logger  logrus.FieldLogger
}

type Handler struct {
	interpreter exprparser.Interpreter
	history     *history.Store
	router      *httprouter.Router
	listener    net.Listener
	server      *http.Server
	logger      logrus.FieldLogger
}

// NewHandler builds the playground routes without listening
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		logger = discard
	}
	logger = logger.WithField("module", "server")

	config := opts.Config
	if config.Logger == nil {
		config.Logger = logger
	}

	h := &Handler{
		interpreter: exprparser.NewInterpreter(opts.Env, config),
		history:     opts.History,
		logger:      logger,
	}

	router := httprouter.New()
	router.POST(urlBase+"/eval", h.middleware(h.eval))
	router.POST(urlBase+"/convert", h.middleware(h.convert))
	router.POST(urlBase+"/equals", h.middleware(h.equals))
	router.GET(urlBase+"/history", h.middleware(h.recent))
	router.GET(urlBase+"/builtins", h.middleware(h.builtins))
	h.router = router

	return h
}

// StartHandler listens on addr and serves in the background
func StartHandler(addr string, opts Options) (*Handler, error) {
	h := NewHandler(opts)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	server := &http.Server{
		ReadHeaderTimeout: 2 * time.Second,
		Handler:           h.router,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			h.logger.Errorf("http serve: %v", err)
		}
	}()
	h.listener = listener
	h.server = server
	h.logger.Infof("listening on %s", h.URL())

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// URL is the base address clients should use
func (h *Handler) URL() string {
	if h.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", h.listener.Addr().String())
}

// Executor serves until ctx is done, then shuts the server down
func (h *Handler) Executor() common.Executor {
	return common.Executor(func(ctx context.Context) error {
		<-ctx.Done()
		common.Logger(ctx).Infof("shutting down")
		return nil
	}).Finally(func(_ context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.Shutdown(shutdownCtx)
	})
}

// Shutdown stops accepting requests and waits for in-flight ones
func (h *Handler) Shutdown(ctx context.Context) error {
	if h == nil || h.server == nil {
		return nil
	}
	err := h.server.Shutdown(ctx)
	h.server = nil
	h.listener = nil
	return err
}

func (h *Handler) Close() error {
	if h == nil {
		return nil
	}
	var retErr error
	if h.server != nil {
		err := h.server.Close()
		if err != nil {
			retErr = err
		}
		h.server = nil
	}
	if h.listener != nil {
		err := h.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
		if err != nil {
			retErr = err
		}
		h.listener = nil
	}
	return retErr
}

// POST /v1/eval
func (h *Handler) eval(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := &EvalRequest{}
	if !h.decode(w, r, req) {
		return
	}
	v, err := h.interpreter.Evaluate(req.Expr)
	h.respondResult(w, r, NewResult(req.Expr, v, err))
}

// POST /v1/convert
func (h *Handler) convert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := &ConvertRequest{}
	if !h.decode(w, r, req) {
		return
	}
	target, err := coerce.ParseTarget(req.To)
	if err != nil {
		h.responseJSON(w, r, 400, err)
		return
	}
	hint, ok := value.ParseHint(req.Hint)
	if !ok {
		h.responseJSON(w, r, 400, fmt.Errorf("unknown hint %q", req.Hint))
		return
	}

	v, err := h.interpreter.Evaluate(req.Expr)
	if err == nil {
		v, err = coerce.Convert(v, target, hint)
	}
	h.respondResult(w, r, NewResult(req.Expr, v, err))
}

// POST /v1/equals
func (h *Handler) equals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := &EqualsRequest{}
	if !h.decode(w, r, req) {
		return
	}
	left, err := h.interpreter.Evaluate(req.Left)
	if err != nil {
		h.respondResult(w, r, NewResult(req.Left, left, err))
		return
	}
	right, err := h.interpreter.Evaluate(req.Right)
	if err != nil {
		h.respondResult(w, r, NewResult(req.Right, right, err))
		return
	}
	abstract, err := coerce.AbstractEquals(left, right)
	if err != nil {
		h.respondResult(w, r, NewResult(req.Left+" == "+req.Right, value.Undefined(), err))
		return
	}
	h.responseJSON(w, r, 200, &EqualsResult{
		Left:          coerce.Inspect(left),
		Right:         coerce.Inspect(right),
		Strict:        coerce.StrictEquals(left, right),
		Abstract:      abstract,
		SameValue:     coerce.SameValue(left, right),
		SameValueZero: coerce.SameValueZero(left, right),
	})
}

// GET /v1/history
func (h *Handler) recent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.history == nil {
		h.responseJSON(w, r, 404, fmt.Errorf("history is disabled"))
		return
	}
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.responseJSON(w, r, 400, fmt.Errorf("invalid limit %q", s))
			return
		}
		limit = n
	}
	entries, err := h.history.Recent(limit)
	if err != nil {
		h.responseJSON(w, r, 500, err)
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	h.responseJSON(w, r, 200, entries)
}

// GET /v1/builtins
func (h *Handler) builtins(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.responseJSON(w, r, 200, exprparser.BuiltinNames())
}

func (h *Handler) middleware(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		h.logger.Debugf("%s %s", r.Method, r.RequestURI)
		handler(w, r, params)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		h.responseJSON(w, r, 400, err)
		return false
	}
	return true
}

// respondResult records res and writes it. Evaluation errors are the
// client's, so they are 422 rather than 500.
func (h *Handler) respondResult(w http.ResponseWriter, r *http.Request, res *Result) {
	if h.history != nil {
		entry := &history.Entry{
			Source: history.SourceServer,
			Expr:   res.Expr,
			Result: res.Repr,
			Kind:   res.Kind,
			Error:  res.Error,
		}
		if err := h.history.Append(entry); err != nil {
			h.logger.Warnf("record history: %v", err)
		}
	}
	code := 200
	if res.Error != "" {
		code = 422
	}
	h.responseJSON(w, r, code, res)
}

func (h *Handler) responseJSON(w http.ResponseWriter, r *http.Request, code int, v ...any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	var data []byte
	if len(v) == 0 || v[0] == nil {
		data, _ = json.Marshal(struct{}{})
	} else if err, ok := v[0].(error); ok {
		h.logger.Errorf("%v %v: %v", r.Method, r.RequestURI, err)
		data, _ = json.Marshal(map[string]any{
			"error": err.Error(),
		})
	} else {
		data, _ = json.Marshal(v[0])
	}
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
