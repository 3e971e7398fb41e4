package chat

// Transcript is the ordered message history for one identity. Ordering is by
// position; CreatedAt is display-only.
type Transcript []Message

// Clone returns an independent copy of the transcript.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	copied := make(Transcript, len(t))
	copy(copied, t)
	return copied
}

// PendingIndex returns the position of the pending entry, or -1 if none. At
// most one entry may be pending at a time.
func (t Transcript) PendingIndex() int {
	for i, msg := range t {
		if msg.Pending {
			return i
		}
	}
	return -1
}

// Normalize drops any pending entries left over from a transcript that was
// persisted mid-flight. A reloaded transcript never resumes a dangling
// "Typing..." placeholder.
func (t Transcript) Normalize() Transcript {
	out := make(Transcript, 0, len(t))
	for _, msg := range t {
		if msg.Pending {
			continue
		}
		out = append(out, msg)
	}
	return out
}
