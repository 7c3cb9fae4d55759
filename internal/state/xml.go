package state

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
)

// XMLNamespace is the namespace written on the root <xml> element.
const XMLNamespace = "https://developers.google.com/blockly/xml"

type xmlDocument struct {
	XMLName   xml.Name      `xml:"xml"`
	Xmlns     string        `xml:"xmlns,attr,omitempty"`
	Variables *xmlVariables `xml:"variables"`
	Blocks    []*xmlBlock   `xml:"block"`
	Comments  []*xmlComment `xml:"comment"`
}

type xmlVariables struct {
	Variables []xmlVariable `xml:"variable"`
}

type xmlVariable struct {
	Type string `xml:"type,attr"`
	ID   string `xml:"id,attr"`
	Name string `xml:",chardata"`
}

// xmlBlock has no XMLName so that the enclosing field tag decides between
// <block> and <shadow>.
type xmlBlock struct {
	Type       string           `xml:"type,attr"`
	ID         string           `xml:"id,attr,omitempty"`
	X          string           `xml:"x,attr,omitempty"`
	Y          string           `xml:"y,attr,omitempty"`
	Collapsed  string           `xml:"collapsed,attr,omitempty"`
	Disabled   string           `xml:"disabled,attr,omitempty"`
	Editable   string           `xml:"editable,attr,omitempty"`
	Deletable  string           `xml:"deletable,attr,omitempty"`
	Movable    string           `xml:"movable,attr,omitempty"`
	Inline     string           `xml:"inline,attr,omitempty"`
	Mutation   *xmlMutation     `xml:"mutation"`
	Comment    *xmlBlockComment `xml:"comment"`
	Data       string           `xml:"data,omitempty"`
	Fields     []xmlField       `xml:"field"`
	Values     []*xmlInput      `xml:"value"`
	Statements []*xmlInput      `xml:"statement"`
	Next       *xmlInput        `xml:"next"`
}

type xmlMutation struct {
	ExtraState string `xml:"extra_state,attr,omitempty"`
}

type xmlBlockComment struct {
	Pinned string `xml:"pinned,attr,omitempty"`
	H      string `xml:"h,attr,omitempty"`
	W      string `xml:"w,attr,omitempty"`
	Text   string `xml:",chardata"`
}

type xmlField struct {
	Name         string `xml:"name,attr"`
	ID           string `xml:"id,attr,omitempty"`
	VariableType string `xml:"variabletype,attr,omitempty"`
	Value        string `xml:",chardata"`
}

type xmlInput struct {
	Name   string    `xml:"name,attr,omitempty"`
	Shadow *xmlBlock `xml:"shadow"`
	Block  *xmlBlock `xml:"block"`
}

type xmlComment struct {
	ID   string `xml:"id,attr"`
	X    string `xml:"x,attr"`
	Y    string `xml:"y,attr"`
	H    string `xml:"h,attr,omitempty"`
	W    string `xml:"w,attr,omitempty"`
	Text string `xml:",chardata"`
}

// MarshalBlockXML encodes one block subtree as a <block> element.
func MarshalBlockXML(b *Block) ([]byte, error) {
	xb, err := blockToXML(b)
	if err != nil {
		return nil, err
	}
	return xml.Marshal(struct {
		*xmlBlock
		XMLName xml.Name `xml:"block"`
	}{xmlBlock: xb})
}

// UnmarshalBlockXML decodes a single <block> element.
func UnmarshalBlockXML(data []byte) (*Block, error) {
	var xb xmlBlock
	if err := xml.Unmarshal(data, &xb); err != nil {
		return nil, fmt.Errorf("decoding block xml: %w", err)
	}
	return blockFromXML(&xb)
}

// MarshalWorkspaceXML encodes the legacy document. Procedures have no XML
// form and are dropped.
func MarshalWorkspaceXML(w *Workspace) ([]byte, error) {
	doc := xmlDocument{Xmlns: XMLNamespace}
	if len(w.Variables) > 0 {
		doc.Variables = &xmlVariables{}
		for _, v := range w.Variables {
			doc.Variables.Variables = append(doc.Variables.Variables, xmlVariable{Type: v.Type, ID: v.ID, Name: v.Name})
		}
	}
	for _, b := range w.TopBlocks() {
		xb, err := blockToXML(b)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, xb)
	}
	for i := range w.Comments {
		doc.Comments = append(doc.Comments, commentToXML(&w.Comments[i]))
	}
	return xml.Marshal(doc)
}

// UnmarshalWorkspaceXML decodes the legacy document.
func UnmarshalWorkspaceXML(data []byte) (*Workspace, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding workspace xml: %w", err)
	}
	w := &Workspace{}
	if doc.Variables != nil {
		for _, v := range doc.Variables.Variables {
			w.Variables = append(w.Variables, Variable{Name: v.Name, ID: v.ID, Type: v.Type})
		}
	}
	if len(doc.Blocks) > 0 {
		w.Blocks = &Blocks{LanguageVersion: LanguageVersion}
		for _, xb := range doc.Blocks {
			b, err := blockFromXML(xb)
			if err != nil {
				return nil, err
			}
			w.Blocks.Blocks = append(w.Blocks.Blocks, b)
		}
	}
	for _, xc := range doc.Comments {
		c, err := commentFromXML(xc)
		if err != nil {
			return nil, err
		}
		w.Comments = append(w.Comments, *c)
	}
	return w, nil
}

// MarshalCommentXML encodes a workspace comment as a <comment> element.
func MarshalCommentXML(c *Comment) ([]byte, error) {
	return xml.Marshal(struct {
		*xmlComment
		XMLName xml.Name `xml:"comment"`
	}{xmlComment: commentToXML(c)})
}

// UnmarshalCommentXML decodes a <comment> element.
func UnmarshalCommentXML(data []byte) (*Comment, error) {
	var xc xmlComment
	if err := xml.Unmarshal(data, &xc); err != nil {
		return nil, fmt.Errorf("decoding comment xml: %w", err)
	}
	return commentFromXML(&xc)
}

func blockToXML(b *Block) (*xmlBlock, error) {
	xb := &xmlBlock{Type: b.Type, ID: b.ID, Data: b.Data}
	if c, ok := b.Coordinate(); ok {
		xb.X = formatNumber(c.X)
		xb.Y = formatNumber(c.Y)
	}
	if b.Collapsed {
		xb.Collapsed = "true"
	}
	if b.Disabled {
		xb.Disabled = "true"
	}
	xb.Editable = formatFlag(b.Editable)
	xb.Deletable = formatFlag(b.Deletable)
	xb.Movable = formatFlag(b.Movable)
	xb.Inline = formatFlag(b.Inline)
	if b.ExtraState != nil {
		raw, err := json.Marshal(b.ExtraState)
		if err != nil {
			return nil, fmt.Errorf("block %q: encoding extra state: %w", b.ID, err)
		}
		xb.Mutation = &xmlMutation{ExtraState: string(raw)}
	}
	if b.Icons != nil && b.Icons.Comment != nil {
		ci := b.Icons.Comment
		xb.Comment = &xmlBlockComment{Text: ci.Text}
		if ci.Pinned {
			xb.Comment.Pinned = "true"
		}
		if ci.Height != 0 {
			xb.Comment.H = formatNumber(ci.Height)
		}
		if ci.Width != 0 {
			xb.Comment.W = formatNumber(ci.Width)
		}
	}
	for _, name := range sortedKeys(b.Fields) {
		xb.Fields = append(xb.Fields, fieldToXML(name, b.Fields[name]))
	}
	for _, name := range sortedKeys(b.Inputs) {
		in, err := connectionToXML(name, b.Inputs[name])
		if err != nil {
			return nil, err
		}
		if b.Inputs[name].Statement {
			xb.Statements = append(xb.Statements, in)
		} else {
			xb.Values = append(xb.Values, in)
		}
	}
	if b.Next != nil {
		next, err := connectionToXML("", b.Next)
		if err != nil {
			return nil, err
		}
		xb.Next = next
	}
	return xb, nil
}

func connectionToXML(name string, c *Connection) (*xmlInput, error) {
	in := &xmlInput{Name: name}
	var err error
	if c.Shadow != nil {
		if in.Shadow, err = blockToXML(c.Shadow); err != nil {
			return nil, err
		}
	}
	if c.Block != nil {
		if in.Block, err = blockToXML(c.Block); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// fieldToXML writes variable references as <field id=.. variabletype=..>name</field>.
func fieldToXML(name string, v any) xmlField {
	f := xmlField{Name: name}
	switch t := v.(type) {
	case map[string]any:
		f.ID, _ = t["id"].(string)
		f.VariableType, _ = t["type"].(string)
		f.Value, _ = t["name"].(string)
	case string:
		f.Value = t
	case float64:
		f.Value = formatNumber(t)
	case bool:
		if t {
			f.Value = "TRUE"
		} else {
			f.Value = "FALSE"
		}
	case nil:
	default:
		f.Value = fmt.Sprint(t)
	}
	return f
}

func blockFromXML(xb *xmlBlock) (*Block, error) {
	b := &Block{Type: xb.Type, ID: xb.ID, Data: xb.Data}
	if xb.X != "" || xb.Y != "" {
		x, err := parseNumber(xb.X)
		if err != nil {
			return nil, fmt.Errorf("block %q: bad x attribute: %w", xb.ID, err)
		}
		y, err := parseNumber(xb.Y)
		if err != nil {
			return nil, fmt.Errorf("block %q: bad y attribute: %w", xb.ID, err)
		}
		b.X, b.Y = Float(x), Float(y)
	}
	b.Collapsed = xb.Collapsed == "true"
	b.Disabled = xb.Disabled == "true"
	b.Editable = parseFlag(xb.Editable)
	b.Deletable = parseFlag(xb.Deletable)
	b.Movable = parseFlag(xb.Movable)
	b.Inline = parseFlag(xb.Inline)
	if xb.Mutation != nil && xb.Mutation.ExtraState != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(xb.Mutation.ExtraState)))
		if err := dec.Decode(&b.ExtraState); err != nil {
			return nil, fmt.Errorf("block %q: decoding extra state: %w", xb.ID, err)
		}
	}
	if xb.Comment != nil {
		ci := &CommentIcon{Text: xb.Comment.Text, Pinned: xb.Comment.Pinned == "true"}
		ci.Height, _ = parseNumber(xb.Comment.H)
		ci.Width, _ = parseNumber(xb.Comment.W)
		b.Icons = &Icons{Comment: ci}
	}
	for _, f := range xb.Fields {
		if b.Fields == nil {
			b.Fields = make(map[string]any)
		}
		if f.ID != "" {
			b.Fields[f.Name] = map[string]any{"id": f.ID, "name": f.Value, "type": f.VariableType}
		} else {
			b.Fields[f.Name] = f.Value
		}
	}
	add := func(in *xmlInput, statement bool) error {
		if in.Name == "" {
			return fmt.Errorf("block %q: input element without a name", xb.ID)
		}
		c, err := connectionFromXML(in)
		if err != nil {
			return err
		}
		c.Statement = statement
		if b.Inputs == nil {
			b.Inputs = make(map[string]*Connection)
		}
		b.Inputs[in.Name] = c
		return nil
	}
	for _, in := range xb.Values {
		if err := add(in, false); err != nil {
			return nil, err
		}
	}
	for _, in := range xb.Statements {
		if err := add(in, true); err != nil {
			return nil, err
		}
	}
	if xb.Next != nil {
		next, err := connectionFromXML(xb.Next)
		if err != nil {
			return nil, err
		}
		b.Next = next
	}
	return b, nil
}

func connectionFromXML(in *xmlInput) (*Connection, error) {
	c := &Connection{}
	var err error
	if in.Shadow != nil {
		if c.Shadow, err = blockFromXML(in.Shadow); err != nil {
			return nil, err
		}
	}
	if in.Block != nil {
		if c.Block, err = blockFromXML(in.Block); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func commentToXML(c *Comment) *xmlComment {
	xc := &xmlComment{ID: c.ID, X: formatNumber(c.X), Y: formatNumber(c.Y), Text: c.Text}
	if c.Height != 0 {
		xc.H = formatNumber(c.Height)
	}
	if c.Width != 0 {
		xc.W = formatNumber(c.Width)
	}
	return xc
}

func commentFromXML(xc *xmlComment) (*Comment, error) {
	c := &Comment{ID: xc.ID, Text: xc.Text}
	var err error
	if c.X, err = parseNumber(xc.X); err != nil {
		return nil, fmt.Errorf("comment %q: bad x attribute: %w", xc.ID, err)
	}
	if c.Y, err = parseNumber(xc.Y); err != nil {
		return nil, fmt.Errorf("comment %q: bad y attribute: %w", xc.ID, err)
	}
	c.Height, _ = parseNumber(xc.H)
	c.Width, _ = parseNumber(xc.W)
	return c, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFlag(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}

func parseFlag(s string) *bool {
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	default:
		return nil
	}
}
