package kit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		order = append(order, "endpoint")
		return nil, nil
	})
	ep(context.Background(), nil)

	want := []string{"a", "b", "c", "endpoint"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

type recordingObserver struct {
	names []string
	errs  []error
}

func (o *recordingObserver) Observe(name string, _ time.Duration, err error) {
	o.names = append(o.names, name)
	o.errs = append(o.errs, err)
}

func TestInstrument(t *testing.T) {
	obs := &recordingObserver{}
	boom := errors.New("boom")
	ep := Instrument(obs, "search")(func(context.Context, any) (any, error) { return nil, boom })
	if _, err := ep(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(obs.names) != 1 || obs.names[0] != "search" || obs.errs[0] != boom {
		t.Errorf("observed %v %v", obs.names, obs.errs)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("generated id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
	}

	const given = "0b6f9d1e-8a3e-4a43-9d0f-1c2b3a4d5e6f"
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, given)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != given {
		t.Errorf("id = %q, want caller's %q", seen, given)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "not-a-uuid" {
		t.Error("malformed id should be replaced")
	}
}

func TestTransportDefault(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" {
		t.Errorf("default transport = %q", GetTransport(ctx))
	}
	if GetTransport(WithTransport(ctx, "mcp")) != "mcp" {
		t.Error("transport not stored")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" MA, ,TX ,")
	if !reflect.DeepEqual(got, []string{"MA", "TX"}) {
		t.Errorf("SplitList = %v", got)
	}
	if SplitList("") != nil {
		t.Error("empty input should give nil")
	}
}
