package workspace

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/stretchr/testify/require"
)

// listBehavior gives the test "list" block one input per item.
type listBehavior struct{ items int }

func (l *listBehavior) Init(b *Block) error { return l.rebuild(b, 2) }

func (l *listBehavior) SaveExtraState(*Block) any { return map[string]any{"items": float64(l.items)} }

func (l *listBehavior) LoadExtraState(b *Block, s any) error {
	m, ok := s.(map[string]any)
	if !ok {
		return fmt.Errorf("unexpected extra state %T", s)
	}
	n, _ := m["items"].(float64)
	return l.rebuild(b, int(n))
}

func (l *listBehavior) rebuild(b *Block, n int) error {
	for i := n; i < l.items; i++ {
		if err := b.RemoveInput(fmt.Sprintf("ADD%d", i)); err != nil {
			return err
		}
	}
	for i := l.items; i < n; i++ {
		if _, err := b.AppendInput(ValueInput, fmt.Sprintf("ADD%d", i)); err != nil {
			return err
		}
	}
	l.items = n
	return nil
}

type procBehavior struct {
	def bool
}

func (p procBehavior) ProcedureID(b *Block) string {
	id, _ := b.FieldValue("PROC").(string)
	return id
}
func (p procBehavior) DefinesProcedure(*Block) bool { return p.def }
func (p procBehavior) Parameters(b *Block) []string {
	if !p.def {
		return nil
	}
	id, _ := b.FieldValue("PARAM").(string)
	if id == "" {
		return nil
	}
	return []string{id}
}

type watchBehavior struct {
	seen     []events.Type
	disposed bool
}

func (w *watchBehavior) OnChange(_ *Block, e *events.Event) { w.seen = append(w.seen, e.Type()) }
func (w *watchBehavior) OnDispose(*Block)                    { w.disposed = true }

func testTypes() TypeMap {
	return TypeMap{
		"stack": {Name: "stack", Previous: true, Next: true},
		"hat":   {Name: "hat", Next: true},
		"loop": {Name: "loop", Previous: true, Next: true, Inputs: []InputSpec{
			{Kind: ValueInput, Name: "TIMES", Check: []string{"Number"}},
			{Kind: StatementInput, Name: "DO"},
		}},
		"number": {Name: "number", Output: true, OutputCheck: []string{"Number"}, Inputs: []InputSpec{
			{Kind: DummyInput, Fields: []FieldSpec{{Kind: FieldNumber, Name: "NUM", Value: 0.0}}},
		}},
		"text": {Name: "text", Output: true, OutputCheck: []string{"String"}, Inputs: []InputSpec{
			{Kind: DummyInput, Fields: []FieldSpec{{Kind: FieldInput, Name: "TEXT"}}},
		}},
		"negate": {Name: "negate", Output: true, OutputCheck: []string{"Number"}, Inputs: []InputSpec{
			{Kind: ValueInput, Name: "VALUE", Check: []string{"Number"}},
		}},
		"sum": {Name: "sum", Output: true, Inputs: []InputSpec{
			{Kind: ValueInput, Name: "A"},
			{Kind: ValueInput, Name: "B"},
		}},
		"print": {Name: "print", Previous: true, Next: true, Inputs: []InputSpec{
			{Kind: ValueInput, Name: "TEXT", Shadow: &state.Block{Type: "text", Fields: map[string]any{"TEXT": "abc"}}},
		}},
		"flags": {Name: "flags", Previous: true, Next: true, Inputs: []InputSpec{
			{Kind: DummyInput, Fields: []FieldSpec{
				{Kind: FieldCheckbox, Name: "ON"},
				{Kind: FieldDropdown, Name: "OP", Options: []Option{{"plus", "ADD"}, {"minus", "MINUS"}}},
				{Kind: FieldNumber, Name: "PCT", Min: ptr(0.0), Max: ptr(100.0), Precision: 0.5},
			}},
		}},
		"var_get": {Name: "var_get", Output: true, Inputs: []InputSpec{
			{Kind: DummyInput, Fields: []FieldSpec{{Kind: FieldVariable, Name: "VAR", Value: "item"}}},
		}},
		"list": {Name: "list", Output: true, NewBehavior: func() any { return &listBehavior{} }},
		"proc_def": {Name: "proc_def", Inputs: []InputSpec{
			{Kind: DummyInput, Fields: []FieldSpec{{Kind: FieldInput, Name: "PROC"}, {Kind: FieldInput, Name: "PARAM"}}},
			{Kind: StatementInput, Name: "STACK"},
		}, NewBehavior: func() any { return procBehavior{def: true} }},
		"proc_call": {Name: "proc_call", Previous: true, Next: true, Inputs: []InputSpec{
			{Kind: DummyInput, Fields: []FieldSpec{{Kind: FieldInput, Name: "PROC"}}},
		}, NewBehavior: func() any { return procBehavior{} }},
		"watch": {Name: "watch", Previous: true, Next: true, NewBehavior: func() any { return &watchBehavior{} }},
	}
}

func ptr[T any](v T) *T { return &v }

type testEnv struct {
	ws     *Workspace
	logs   *bytes.Buffer
	events []*events.Event
}

func newTestWorkspace(t *testing.T, opts Options) *testEnv {
	t.Helper()
	env := &testEnv{logs: &bytes.Buffer{}}
	logger := slog.New(slog.NewTextHandler(env.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	env.ws = New(ctx, testTypes(), opts)
	env.ws.AddChangeListener(func(e *events.Event) { env.events = append(env.events, e) })
	return env
}

func (env *testEnv) newBlock(t *testing.T, typ, id string) *Block {
	t.Helper()
	b, err := env.ws.NewBlock(typ, id)
	require.NoError(t, err)
	return b
}

func (env *testEnv) reset() { env.events = nil }

func (env *testEnv) types() []events.Type {
	out := make([]events.Type, len(env.events))
	for i, e := range env.events {
		out[i] = e.Type()
	}
	return out
}

// snapshot is the comparable form of a workspace.
func snapshot(ws *Workspace) *state.Workspace { return Save(ws) }

func connect(t *testing.T, parent *Connection, child *Connection) {
	t.Helper()
	require.NoError(t, parent.Connect(child))
}

func at(x, y float64) geom.Coordinate { return geom.Coordinate{X: x, Y: y} }

func logContains(env *testEnv, s string) bool { return strings.Contains(env.logs.String(), s) }

// fixedRenderer gives every block a fixed size and puts connections on the
// block edges, enough for layout and spatial index tests.
type fixedRenderer struct {
	rendered []string
}

type fixedInfo struct {
	size    geom.Size
	offsets map[*Connection]geom.Coordinate
}

func (i fixedInfo) Size() geom.Size { return i.size }
func (i fixedInfo) ConnectionOffset(c *Connection) (geom.Coordinate, bool) {
	off, ok := i.offsets[c]
	return off, ok
}

func (r *fixedRenderer) Measure(b *Block) RenderInfo {
	info := fixedInfo{size: geom.Size{Width: 100, Height: 40}, offsets: map[*Connection]geom.Coordinate{}}
	if b.OutputConnection() != nil {
		info.offsets[b.OutputConnection()] = at(0, 0)
	}
	if b.PreviousConnection() != nil {
		info.offsets[b.PreviousConnection()] = at(0, 0)
	}
	if b.NextConnection() != nil {
		info.offsets[b.NextConnection()] = at(0, 40)
	}
	y := 0.0
	for _, in := range b.Inputs() {
		if in.Connection() != nil {
			info.offsets[in.Connection()] = at(100, y)
			y += 10
		}
	}
	return info
}

func (r *fixedRenderer) Draw(b *Block, _ RenderInfo) {
	r.rendered = append(r.rendered, b.ID())
}
