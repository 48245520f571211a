package exchange

import "sync"

// ResponsePool recycles *Response values across the replay loop. A
// Response's lifetime ends the moment internal/backtest copies it by
// value into a pendingResponse, so the pointer can be returned
// immediately after.
type ResponsePool struct {
	pool sync.Pool
}

// NewResponsePool builds an empty pool.
func NewResponsePool() *ResponsePool {
	return &ResponsePool{pool: sync.Pool{New: func() interface{} { return &Response{} }}}
}

// Get returns a zeroed Response, pulling from the pool when possible.
func (p *ResponsePool) Get() *Response {
	return p.pool.Get().(*Response)
}

// Put returns r to the pool after the caller is done with it.
func (p *ResponsePool) Put(r *Response) {
	*r = Response{}
	p.pool.Put(r)
}
