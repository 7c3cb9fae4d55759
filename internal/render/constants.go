package render

// Constants are the geometric values a renderer lays blocks out with. The
// hcl tags let a manifest `renderer "<name>"` block override any subset of
// a renderer's defaults.
type Constants struct {
	SmallPadding  float64 `hcl:"small_padding,optional"`
	MediumPadding float64 `hcl:"medium_padding,optional"`
	LargePadding  float64 `hcl:"large_padding,optional"`
	CornerRadius  float64 `hcl:"corner_radius,optional"`

	MinBlockWidth      float64 `hcl:"min_block_width,optional"`
	MinBlockHeight     float64 `hcl:"min_block_height,optional"`
	TopRowMinHeight    float64 `hcl:"top_row_min_height,optional"`
	BottomRowMinHeight float64 `hcl:"bottom_row_min_height,optional"`

	NotchWidth      float64 `hcl:"notch_width,optional"`
	NotchHeight     float64 `hcl:"notch_height,optional"`
	NotchOffsetLeft float64 `hcl:"notch_offset_left,optional"`

	TabWidth         float64 `hcl:"tab_width,optional"`
	TabHeight        float64 `hcl:"tab_height,optional"`
	TabOffsetFromTop float64 `hcl:"tab_offset_from_top,optional"`
	// MaxDynamicShapeWidth caps the width of shapes sized by block height.
	MaxDynamicShapeWidth float64 `hcl:"max_dynamic_shape_width,optional"`

	EmptyInlineInputPadding   float64 `hcl:"empty_inline_input_padding,optional"`
	EmptyInlineInputHeight    float64 `hcl:"empty_inline_input_height,optional"`
	ExternalValueInputPadding float64 `hcl:"external_value_input_padding,optional"`
	DummyInputMinHeight       float64 `hcl:"dummy_input_min_height,optional"`

	EmptyStatementInputHeight    float64 `hcl:"empty_statement_input_height,optional"`
	StatementInputNotchOffset    float64 `hcl:"statement_input_notch_offset,optional"`
	StatementBottomSpacer        float64 `hcl:"statement_bottom_spacer,optional"`
	StatementInputSpacerMinWidth float64 `hcl:"statement_input_spacer_min_width,optional"`

	JaggedTeethWidth    float64 `hcl:"jagged_teeth_width,optional"`
	JaggedTeethHeight   float64 `hcl:"jagged_teeth_height,optional"`
	CollapsedTextLength int     `hcl:"collapsed_text_length,optional"`

	FieldTextHeight         float64 `hcl:"field_text_height,optional"`
	FieldCharWidth          float64 `hcl:"field_char_width,optional"`
	FieldBorderRectXPadding float64 `hcl:"field_border_rect_x_padding,optional"`
	FieldBorderRectHeight   float64 `hcl:"field_border_rect_height,optional"`
	FieldDropdownArrowWidth float64 `hcl:"field_dropdown_arrow_width,optional"`
	FieldCheckboxSize       float64 `hcl:"field_checkbox_size,optional"`
	FieldImageSize          float64 `hcl:"field_image_size,optional"`
}

// MinimalistConstants are the bare base constants: the classic geometry
// without the border padding around editable fields. It is the starting point
// for renderers defined entirely through manifest overrides.
func MinimalistConstants() Constants {
	c := ClassicConstants()
	c.FieldBorderRectXPadding = 0
	return c
}

// ClassicConstants are the defaults of the classic renderer: fixed puzzle
// tabs and a small notch.
func ClassicConstants() Constants {
	return Constants{
		SmallPadding:  3,
		MediumPadding: 5,
		LargePadding:  10,
		CornerRadius:  8,

		MinBlockWidth:      12,
		MinBlockHeight:     24,
		TopRowMinHeight:    5,
		BottomRowMinHeight: 5,

		NotchWidth:      15,
		NotchHeight:     4,
		NotchOffsetLeft: 15,

		TabWidth:         8,
		TabHeight:        15,
		TabOffsetFromTop: 5,

		EmptyInlineInputPadding:   14.5,
		EmptyInlineInputHeight:    26,
		ExternalValueInputPadding: 2,
		DummyInputMinHeight:       15,

		EmptyStatementInputHeight:    24,
		StatementInputNotchOffset:    15,
		StatementBottomSpacer:        0,
		StatementInputSpacerMinWidth: 0,

		JaggedTeethWidth:    6,
		JaggedTeethHeight:   12,
		CollapsedTextLength: 30,

		FieldTextHeight:         16,
		FieldCharWidth:          7,
		FieldBorderRectXPadding: 5,
		FieldBorderRectHeight:   16,
		FieldDropdownArrowWidth: 12,
		FieldCheckboxSize:       15,
		FieldImageSize:          15,
	}
}

// ZelosConstants are the defaults of the zelos renderer, built on a four
// pixel grid with output shapes that grow with the block.
func ZelosConstants() Constants {
	const grid = 4
	return Constants{
		SmallPadding:  grid,
		MediumPadding: 2 * grid,
		LargePadding:  4 * grid,
		CornerRadius:  grid,

		MinBlockWidth:      2 * grid,
		MinBlockHeight:     12 * grid,
		TopRowMinHeight:    grid,
		BottomRowMinHeight: grid,

		NotchWidth:      9 * grid,
		NotchHeight:     2 * grid,
		NotchOffsetLeft: 3 * grid,

		TabWidth:             4 * grid,
		TabHeight:            8 * grid,
		TabOffsetFromTop:     0,
		MaxDynamicShapeWidth: 12 * grid,

		EmptyInlineInputPadding:   4 * grid,
		EmptyInlineInputHeight:    8 * grid,
		ExternalValueInputPadding: 0,
		DummyInputMinHeight:       8 * grid,

		EmptyStatementInputHeight:    6 * grid,
		StatementInputNotchOffset:    4 * grid,
		StatementBottomSpacer:        -2 * grid,
		StatementInputSpacerMinWidth: 40 * grid,

		JaggedTeethWidth:    6,
		JaggedTeethHeight:   12,
		CollapsedTextLength: 30,

		FieldTextHeight:         16,
		FieldCharWidth:          8,
		FieldBorderRectXPadding: 2 * grid,
		FieldBorderRectHeight:   8 * grid,
		FieldDropdownArrowWidth: 3 * grid,
		FieldCheckboxSize:       6 * grid,
		FieldImageSize:          6 * grid,
	}
}
