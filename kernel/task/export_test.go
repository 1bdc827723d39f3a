package task

func (e *Executor) hasWaker(id ID) bool {
	_, ok := e.wakers[id]
	return ok
}
