package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/blockgraph/internal/ctxlog"
	"github.com/specialistvlad/blockgraph/internal/events"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faults decides how the "fragile" block's hooks misbehave.
type faults struct {
	init, load string
}

func (f *faults) trigger(mode string) error {
	switch mode {
	case "error":
		return errors.New("hook failed")
	case "panic":
		var m map[string]int
		m["boom"] = 1
	}
	return nil
}

type fragileBehavior struct{ f *faults }

func (b fragileBehavior) Init(*Block) error                { return b.f.trigger(b.f.init) }
func (b fragileBehavior) SaveExtraState(*Block) any        { return map[string]any{"n": 1.0} }
func (b fragileBehavior) LoadExtraState(*Block, any) error { return b.f.trigger(b.f.load) }

func fragileWorkspace(f *faults) *Workspace {
	types := testTypes()
	types["fragile"] = &BlockType{Name: "fragile", Previous: true, Next: true,
		NewBehavior: func() any { return fragileBehavior{f: f} }}
	return New(ctxlog.Discard(context.Background()), types, Options{})
}

func TestSessionRestoredAfterFailedHooks(t *testing.T) {
	extra := &state.Block{Type: "fragile", ExtraState: map[string]any{"n": 2.0}}

	tests := []struct {
		name string
		f    faults
		run  func(ws *Workspace, f *faults) error
	}{
		{
			name: "NewBlock init error",
			f:    faults{init: "error"},
			run: func(ws *Workspace, _ *faults) error {
				_, err := ws.NewBlock("fragile", "")
				return err
			},
		},
		{
			name: "NewBlock init panic",
			f:    faults{init: "panic"},
			run: func(ws *Workspace, _ *faults) error {
				_, err := ws.NewBlock("fragile", "")
				return err
			},
		},
		{
			name: "AppendBlock extra state error",
			f:    faults{load: "error"},
			run: func(ws *Workspace, _ *faults) error {
				_, err := AppendBlock(ws, extra.Clone(), AppendOptions{})
				return err
			},
		},
		{
			name: "AppendBlock extra state panic",
			f:    faults{load: "panic"},
			run: func(ws *Workspace, _ *faults) error {
				_, err := AppendBlock(ws, extra.Clone(), AppendOptions{})
				return err
			},
		},
		{
			name: "AppendBlock init panic",
			f:    faults{init: "panic"},
			run: func(ws *Workspace, _ *faults) error {
				_, err := AppendBlock(ws, extra.Clone(), AppendOptions{RecordUndo: true})
				return err
			},
		},
		{
			name: "flyout CreateBlock extra state panic",
			run: func(ws *Workspace, f *faults) error {
				fl := NewFlyout(ctxlog.Discard(context.Background()), ws)
				defer fl.Dispose()
				if err := fl.Show([]*state.Block{{Type: "fragile"}}); err != nil {
					return err
				}
				f.load = "panic"
				_, err := fl.CreateBlock(fl.Workspace().TopBlocks(false)[0])
				return err
			},
		},
		{
			name: "flyout CreateBlock extra state error",
			run: func(ws *Workspace, f *faults) error {
				fl := NewFlyout(ctxlog.Discard(context.Background()), ws)
				defer fl.Dispose()
				if err := fl.Show([]*state.Block{{Type: "fragile"}}); err != nil {
					return err
				}
				f.load = "error"
				_, err := fl.CreateBlock(fl.Workspace().TopBlocks(false)[0])
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.f
			ws := fragileWorkspace(&f)
			s := ws.Session()
			require.True(t, s.Enabled())
			require.True(t, s.RecordUndo())
			require.Empty(t, s.Group())

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errors.New("recovered")
					}
				}()
				return tt.run(ws, &f)
			}()
			require.Error(t, err)

			assert.True(t, s.Enabled(), "events stay enabled")
			assert.True(t, s.RecordUndo(), "undo recording stays on")
			assert.Empty(t, s.Group(), "no group is left open")

			var fired []*events.Event
			ws.AddChangeListener(func(e *events.Event) { fired = append(fired, e) })
			before, _ := ws.UndoDepth()
			_, err = ws.NewBlock("stack", "")
			require.NoError(t, err)
			require.Len(t, fired, 1)
			assert.Equal(t, events.TypeCreate, fired[0].Type())
			after, _ := ws.UndoDepth()
			assert.Equal(t, before+1, after)
		})
	}
}

func TestSessionKeepsOuterGroupAfterPanic(t *testing.T) {
	f := faults{init: "panic"}
	ws := fragileWorkspace(&f)
	restore := ws.Session().SetGroup("outer")
	defer restore()

	assert.Panics(t, func() { _, _ = ws.NewBlock("fragile", "") })
	assert.Equal(t, "outer", ws.Session().Group())
	assert.True(t, ws.Session().Enabled())
}
