package progress

import (
	"bytes"
	"sync"
	"testing"
)

func TestBarCountsConcurrentAdds(t *testing.T) {
	var buf bytes.Buffer

	bar := New(&buf, 1000, "loading")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				bar.Add(10)
			}
		}()
	}
	wg.Wait()

	if got := bar.Current(); got != 1000 {
		t.Errorf("Current = %d, want 1000", got)
	}

	bar.Finish()

	if buf.Len() == 0 {
		t.Error("expected bar output")
	}
}
