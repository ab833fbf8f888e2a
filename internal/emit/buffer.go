package emit

import (
	"bytes"
	"fmt"
)

// cppBuffer accumulates one code area's C++ text with commit-once
// semantics: once Commit runs, further writes panic instead of
// silently corrupting an already-placed section of the output file.
// Adapted from a prior SafeBuffer, dropping its VerboseMode/ScopedBuffer
// machinery — this emitter has no verbose-logging hook and never
// reuses a buffer across sections, so only the write-after-commit
// guard itself is worth keeping.
type cppBuffer struct {
	buf bytes.Buffer
	committed bool
	name string
}

func newCppBuffer(name string) *cppBuffer {
	return &cppBuffer{name: name}
}

func (b *cppBuffer) Write(p []byte) (int, error) {
	if b.committed {
		panic(fmt.Sprintf("emit: write to committed buffer %q", b.name))
	}
	return b.buf.Write(p)
}

func (b *cppBuffer) WriteString(s string) {
	if b.committed {
		panic(fmt.Sprintf("emit: write to committed buffer %q", b.name))
	}
	b.buf.WriteString(s)
}

func (b *cppBuffer) Commit() string {
	b.committed = true
	return b.buf.String()
}
