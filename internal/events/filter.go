package events

// Filter prepares a batch popped off an undo or redo stack for replay.
//
// The batch arrives in stack order. With forward=false (undo) that is newest
// first, and the result keeps that reverse-chronological order; with
// forward=true (redo) it is oldest first and stays chronological. In between,
// events are merged in chronological order:
//   - UI events and null events are dropped;
//   - consecutive moves of the same block collapse into one;
//   - changes of the same element and name keep the first old value and the
//     last new value;
//   - a click directly after a bubble_open on the same block is dropped.
//
// Events that became null through merging are dropped, and mutation changes
// are moved to the front so the block shape exists before its children are
// reattached.
//
// The input events are not modified.
func Filter(batch []*Event, forward bool) []*Event {
	queue := make([]*Event, len(batch))
	copy(queue, batch)
	if !forward {
		reverse(queue)
	}

	type entry struct {
		event *Event
		index int
	}
	merged := make([]*Event, 0, len(queue))
	seen := make(map[string]*entry)

	for i, ev := range queue {
		if ev.IsNull() {
			continue
		}
		kind := string(ev.Type())
		if ev.IsUI() {
			kind = string(TypeUI)
		}
		key := kind + " " + ev.BlockID() + " " + ev.WorkspaceID
		last, ok := seen[key]
		if !ok {
			cp := ev.Clone()
			seen[key] = &entry{event: cp, index: i}
			merged = append(merged, cp)
			continue
		}

		switch p := ev.Payload.(type) {
		case *BlockMove:
			if lp, ok := last.event.Payload.(*BlockMove); ok && last.index == i-1 {
				lp.NewParentID = p.NewParentID
				lp.NewInputName = p.NewInputName
				lp.NewCoordinate = p.NewCoordinate
				last.index = i
				continue
			}
		case *BlockChange:
			if lp, ok := last.event.Payload.(*BlockChange); ok && lp.Element == p.Element && lp.Name == p.Name {
				lp.NewValue = p.NewValue
				continue
			}
		case *ViewportChange:
			if lp, ok := last.event.Payload.(*ViewportChange); ok {
				lp.ViewTop, lp.ViewLeft, lp.Scale = p.ViewTop, p.ViewLeft, p.Scale
				continue
			}
		case *Click:
			if _, ok := last.event.Payload.(*BubbleOpen); ok {
				continue
			}
		}
		cp := ev.Clone()
		seen[key] = &entry{event: cp, index: i}
		merged = append(merged, cp)
	}

	out := make([]*Event, 0, len(merged))
	for _, ev := range merged {
		if ev.IsNull() || ev.IsUI() {
			continue
		}
		out = append(out, ev)
	}
	if !forward {
		reverse(out)
	}

	// Mutation changes first, keeping their relative order.
	front := make([]*Event, 0, len(out))
	rest := make([]*Event, 0, len(out))
	for _, ev := range out {
		if c, ok := ev.Payload.(*BlockChange); ok && c.Element == ElementMutation {
			front = append(front, ev)
		} else {
			rest = append(rest, ev)
		}
	}
	return append(front, rest...)
}

func reverse(s []*Event) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
