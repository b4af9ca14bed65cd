package history

// Complete applies the completion policy §6 documents as belonging to an
// external collaborator: every invoke either already has a matching
// ok/fail/info later in the history, or is left outstanding at the tail as
// a synthetic Info event. The search engine's invariants (§3 invariant 2)
// require this to have been applied before a History is handed to the
// Analyzer.
//
// Complete does not reorder existing events; synthetic Info events are
// appended after the input, in the order their Invoke first appeared, so
// the result is deterministic.
func Complete(h History) History {
	type openInvoke struct {
		process Process
		op      Op
	}

	var open []openInvoke
	index := make(map[Process]int) // process -> index into open, or absent

	for _, op := range h {
		switch op.Type {
		case Invoke:
			index[op.Process] = len(open)
			open = append(open, openInvoke{process: op.Process, op: op})

		case Ok, Fail, Info:
			if i, ok := index[op.Process]; ok {
				open[i].process = nil // mark matched; nil process can't collide (zero value of any)
				delete(index, op.Process)
			}
		}
	}

	out := make(History, len(h), len(h)+len(index))
	copy(out, h)

	for _, o := range open {
		if o.process == nil {
			continue // matched
		}
		out = append(out, Op{
			Type:     Info,
			Process:  o.op.Process,
			Function: o.op.Function,
		})
	}

	return out
}
