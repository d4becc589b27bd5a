package byteutil

import "testing"

func TestGetBytesBuf(t *testing.T) {
	buf := GetBytesBuf()
	buf.WriteString("Seattle\n1.03 2.5 10.11\n")
	PutBytesBuf(buf)

	again := GetBytesBuf()
	if again.Len() != 0 {
		t.Errorf("pooled buffer is not empty, got: %d, expected: %d", again.Len(), 0)
	}
	PutBytesBuf(again)
	PutBytesBuf(nil)
}
