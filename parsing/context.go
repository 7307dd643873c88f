package parsing

import "fmt"

// ParsingData holds one stack of context frames per rule id. Each active
// invocation of a rule owns the frame on top of its stack, which is what
// makes direct and mutual recursion safe.
type ParsingData struct {
	frames [][]any
}

func NewParsingData(numRules int) *ParsingData {
	return &ParsingData{frames: make([][]any, numRules)}
}

func (d *ParsingData) grow(id int) {
	if id >= len(d.frames) {
		frames := make([][]any, id+1)
		copy(frames, d.frames)
		d.frames = frames
	}
}

func (d *ParsingData) PushContext(id int, ctx any) {
	d.grow(id)
	d.frames[id] = append(d.frames[id], ctx)
}

func (d *ParsingData) PopContext(id int) {
	if id >= len(d.frames) || len(d.frames[id]) == 0 {
		panic(fmt.Sprintf("parsing data: no context for rule %d", id))
	}
	stack := d.frames[id]
	stack[len(stack)-1] = nil
	d.frames[id] = stack[:len(stack)-1]
}

// Context returns the frame of the innermost active invocation of rule id.
func (d *ParsingData) Context(id int) any {
	if id >= len(d.frames) || len(d.frames[id]) == 0 {
		panic(fmt.Sprintf("parsing data: no context for rule %d", id))
	}
	stack := d.frames[id]
	return stack[len(stack)-1]
}

// Depth is the number of active invocations of rule id.
func (d *ParsingData) Depth(id int) int {
	if id >= len(d.frames) {
		return 0
	}
	return len(d.frames[id])
}

// Frame returns the typed frame of the innermost invocation of rule id.
func Frame[C any](d *ParsingData, id int) *C {
	c, ok := d.Context(id).(*C)
	if !ok {
		panic(fmt.Sprintf("parsing data: context of rule %d is %T, not *%T", id, d.Context(id), *new(C)))
	}
	return c
}
