package streamcsv

import (
	"bytes"
	stdcsv "encoding/csv"
	"io"
	"strings"
	"testing"
)

func benchmarkData() []byte {
	buf := []byte(strings.Repeat(`xxxxxxxxxxxxxxxx,yyyyyyyyyyyyyyyy,zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww,vvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvv
"Data, ""with"" 
 edge case 17",yyyyyyyyyyyyyyyyyyyyyyyyyyyyyyyy,zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww,vvvv
,,zzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww,vvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvv
xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx,yyyyyyyyyyyyyyyyyyyyyyyyyyyyyyyy,zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz,wwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwwww,vvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvv
`, 3))
	return buf
}

func BenchmarkReader(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		cr := NewReader(bytes.NewReader(data))
		cr.ReuseRecord = true

		for {
			if _, err := cr.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkEncodingCSV(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		cr := stdcsv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1
		cr.ReuseRecord = true

		for {
			if _, err := cr.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func benchmarkRecords() [][]string {
	records, err := NewReader(bytes.NewReader(benchmarkData())).ReadAll()
	if err != nil {
		panic(err)
	}
	return records
}

func BenchmarkWriter(b *testing.B) {
	records := benchmarkRecords()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := NewWriter(io.Discard)
		if err := w.WriteAll(records); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodingCSVWriter(b *testing.B) {
	records := benchmarkRecords()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := stdcsv.NewWriter(io.Discard)
		if err := w.WriteAll(records); err != nil {
			b.Fatal(err)
		}
	}
}
