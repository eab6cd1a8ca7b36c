package market

import "sync"

// Book holds the working buffers for one clearing run.
type Book struct {
	Asks []Order
	Bids []Order
}

// bookPool recycles order-book buffers across products and ticks.
var bookPool = sync.Pool{
	New: func() interface{} {
		return &Book{
			Asks: make([]Order, 0, 16),
			Bids: make([]Order, 0, 16),
		}
	},
}

// AcquireBook gets an empty book from the pool.
func AcquireBook() *Book {
	return bookPool.Get().(*Book)
}

// ReleaseBook truncates the buffers and returns the book to the pool.
func ReleaseBook(bk *Book) {
	if bk == nil {
		return
	}
	bk.Asks = bk.Asks[:0]
	bk.Bids = bk.Bids[:0]
	bookPool.Put(bk)
}

// Warmup pre-allocates books so the first ticks do not pay for them.
func Warmup(n int) {
	books := make([]*Book, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, AcquireBook())
	}
	for _, bk := range books {
		ReleaseBook(bk)
	}
}
