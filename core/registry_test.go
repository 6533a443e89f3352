package core

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubAdapter is a minimal Adapter for registry tests.
type stubAdapter struct {
	name string
	typ  SoftwareType
}

func (s *stubAdapter) Name() string                                         { return s.name }
func (s *stubAdapter) Type() SoftwareType                                   { return s.typ }
func (s *stubAdapter) IsConnected() bool                                    { return false }
func (s *stubAdapter) Configure(Config)                                     {}
func (s *stubAdapter) Connect(context.Context, string) bool                 { return false }
func (s *stubAdapter) Disconnect()                                          {}
func (s *stubAdapter) RunTest(_ context.Context, name string, _ Params) TestResult {
	return TestResult{Name: name, Status: StatusSkipped}
}
func (s *stubAdapter) CaptureScreenshot(string) string      { return "" }
func (s *stubAdapter) CollectMetrics() BenchmarkMetrics     { return NewBenchmarkMetrics() }
func (s *stubAdapter) Logs() []string                       { return nil }

func stubCtor(name string, typ SoftwareType) Constructor {
	return func(zerolog.Logger) Adapter {
		return &stubAdapter{name: name, typ: typ}
	}
}

func TestRegistry_CreateUnknownReturnsNil(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	require.Nil(t, r.Create("missing"))
}

func TestRegistry_CreateReturnsFreshInstances(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(Registration{Name: "game", Type: VideoGame, New: stubCtor("game", VideoGame)})

	a := r.Create("game")
	b := r.Create("game")
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotSame(t, a, b)
	require.Equal(t, VideoGame, a.Type())
}

func TestRegistry_RegisterOverwritesSilently(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(Registration{Name: "game", Type: VideoGame, New: stubCtor("game", VideoGame)})
	r.Register(Registration{Name: "game", Type: WebApp, New: stubCtor("game", WebApp)})

	require.Equal(t, []string{"game"}, r.Names())
	require.Equal(t, WebApp, r.Create("game").Type())
}

func TestRegistry_ListByType(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(Registration{Name: "game", Type: VideoGame, New: stubCtor("game", VideoGame)})
	r.Register(Registration{Name: "web", Type: WebApp, New: stubCtor("web", WebApp)})
	r.Register(Registration{Name: "shop", Type: WebApp, New: stubCtor("shop", WebApp)})

	tests := []struct {
		name string
		typ  SoftwareType
		want []string
	}{
		{name: "single match", typ: VideoGame, want: []string{"game"}},
		{name: "multiple matches keep registration order", typ: WebApp, want: []string{"web", "shop"}},
		{name: "no matches", typ: Daw, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ListByType(tt.typ)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListByType(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(Registration{Name: "game", Type: VideoGame, New: stubCtor("game", VideoGame)})
	r.Clear()

	require.Empty(t, r.Names())
	require.Nil(t, r.Create("game"))
}
