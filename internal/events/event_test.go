package events

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/blockgraph/internal/geom"
	"github.com/specialistvlad/blockgraph/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(x, y float64) *geom.Coordinate { return &geom.Coordinate{X: x, Y: y} }

func TestEvent_JSONRoundTrip(t *testing.T) {
	snapshot := &state.Block{
		Type:   "text_print",
		ID:     "b1",
		X:      state.Float(10),
		Y:      state.Float(20),
		Fields: map[string]any{"NAME": "x"},
		Inputs: map[string]*state.Connection{
			"TEXT": {Shadow: &state.Block{Type: "text", ID: "s1", Fields: map[string]any{"TEXT": "hi"}}},
		},
	}

	testCases := []struct {
		name    string
		payload Payload
	}{
		{"create", &BlockCreate{BlockID: "b1", XML: `<block type="text_print" id="b1"/>`, JSON: snapshot, IDs: []string{"b1", "s1"}}},
		{"delete", &BlockDelete{BlockID: "b1", OldXML: `<block type="text_print" id="b1"/>`, OldJSON: snapshot, IDs: []string{"b1"}, WasShadow: true}},
		{"change field", &BlockChange{BlockID: "b1", Element: ElementField, Name: "NAME", OldValue: "x", NewValue: "y"}},
		{"change number", &BlockChange{BlockID: "b1", Element: ElementField, Name: "NUM", OldValue: 1.5, NewValue: float64(3)}},
		{"change collapsed", &BlockChange{BlockID: "b1", Element: ElementCollapsed, OldValue: false, NewValue: true}},
		{"move to parent", &BlockMove{BlockID: "b1", OldCoordinate: coord(5, 6), NewParentID: "p", NewInputName: "DO"}},
		{"move with reason", &BlockMove{BlockID: "b1", OldParentID: "p", NewCoordinate: coord(-3, 40), Reason: []string{"bump"}}},
		{"drag", &BlockDrag{BlockID: "b1", IsStart: true, Blocks: []string{"b1", "b2"}}},
		{"comment create", &CommentCreate{CommentID: "c1", XML: "<comment/>", JSON: &state.Comment{ID: "c1", Text: "t", X: 1, Y: 2}}},
		{"comment delete", &CommentDelete{CommentID: "c1", XML: "<comment/>", JSON: &state.Comment{ID: "c1"}}},
		{"comment change", &CommentChange{CommentID: "c1", OldContents: "a", NewContents: "b"}},
		{"comment move", &CommentMove{CommentID: "c1", OldCoordinate: geom.Coordinate{X: 1, Y: 2}, NewCoordinate: geom.Coordinate{X: 30, Y: 40}}},
		{"var create", &VarCreate{VarID: "v1", VarType: "Number", VarName: "n"}},
		{"var delete", &VarDelete{VarID: "v1", VarName: "n"}},
		{"var rename", &VarRename{VarID: "v1", OldName: "n", NewName: "m"}},
		{"selected", &Selected{OldElementID: "a", NewElementID: "b"}},
		{"click", &Click{BlockID: "b1", TargetType: "block"}},
		{"bubble open", &BubbleOpen{BlockID: "b1", IsOpen: true, BubbleType: "comment"}},
		{"theme change", &ThemeChange{ThemeName: "dark"}},
		{"viewport change", &ViewportChange{ViewTop: 1, ViewLeft: 2, Scale: 1.5, OldScale: 1}},
		{"toolbox item select", &ToolboxItemSelect{OldItem: "logic", NewItem: "math"}},
		{"trashcan open", &TrashcanOpen{IsOpen: true}},
		{"marker move", &MarkerMove{BlockID: "b1", IsCursor: true, OldNode: "n1", NewNode: "n2"}},
		{"ui", &UI{BlockID: "b1", Element: "inherited_disabled", NewValue: true}},
		{"finished loading", &FinishedLoading{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := New(tc.payload)
			in.Group = "g1"
			in.WorkspaceID = "ws"

			data, err := json.Marshal(in)
			require.NoError(t, err)

			out, err := FromJSON(data, "ws")
			require.NoError(t, err)
			if diff := cmp.Diff(in, out); diff != "" {
				t.Fatalf("event round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvent_JSONWireShape(t *testing.T) {
	e := New(&BlockMove{BlockID: "b1", OldCoordinate: coord(1.4, 2.6), NewParentID: "p"})
	e.Group = "g"
	e.RecordUndo = false

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "move", wire["type"])
	assert.Equal(t, "g", wire["group"])
	assert.Equal(t, "1, 3", wire["oldCoordinate"])
	assert.Equal(t, false, wire["recordUndo"])
	assert.NotContains(t, wire, "oldParentId")
}

func TestEvent_MarshalRejectsIncompletePayloads(t *testing.T) {
	_, err := json.Marshal(New(&BlockCreate{BlockID: "b1"}))
	require.ErrorContains(t, err, "no JSON snapshot")

	_, err = json.Marshal(New(&BlockChange{BlockID: "b1"}))
	require.ErrorContains(t, err, "no element")
}

func TestFromJSON_Errors(t *testing.T) {
	_, err := FromJSON([]byte(`{"type":"bogus"}`), "ws")
	require.ErrorContains(t, err, `unknown event type "bogus"`)

	_, err = FromJSON([]byte(`{"type":"move","blockId":"b","oldCoordinate":"nope"}`), "ws")
	require.ErrorContains(t, err, "oldCoordinate")

	_, err = FromJSON([]byte(`not json`), "ws")
	require.Error(t, err)
}

func TestEvent_IsNull(t *testing.T) {
	assert.True(t, New(&BlockChange{Element: ElementField, Name: "N", OldValue: "y", NewValue: "y"}).IsNull())
	assert.False(t, New(&BlockChange{Element: ElementField, Name: "N", OldValue: "x", NewValue: "y"}).IsNull())
	assert.True(t, New(&BlockChange{Element: ElementMutation, OldValue: map[string]any{"a": 1.0}, NewValue: map[string]any{"a": 1.0}}).IsNull())

	assert.True(t, New(&BlockMove{BlockID: "b", OldCoordinate: coord(1, 1), NewCoordinate: coord(1, 1)}).IsNull())
	assert.False(t, New(&BlockMove{BlockID: "b", OldCoordinate: coord(1, 1), NewParentID: "p"}).IsNull())

	assert.True(t, New(&CommentChange{OldContents: "a", NewContents: "a"}).IsNull())
	assert.False(t, New(&VarCreate{VarID: "v"}).IsNull())
}

func TestNew_RecordUndoDefaults(t *testing.T) {
	assert.True(t, New(&BlockCreate{}).RecordUndo)
	assert.False(t, New(&Selected{}).RecordUndo)
	assert.False(t, New(&BlockDrag{}).RecordUndo)
	assert.False(t, New(&FinishedLoading{}).RecordUndo)
	assert.True(t, New(&Click{}).IsUI())
	assert.False(t, New(&VarRename{}).IsUI())
}

func TestEvent_CloneCopiesPayload(t *testing.T) {
	in := New(&BlockChange{BlockID: "b", Element: ElementField, Name: "N", OldValue: "a", NewValue: "b"})
	out := in.Clone()
	out.Payload.(*BlockChange).NewValue = "c"
	assert.Equal(t, "b", in.Payload.(*BlockChange).NewValue)
}
