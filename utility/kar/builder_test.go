// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"
)

func TestAddAndWrite(t *testing.T) {
	builder, err := NewBuilder(Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	var wg sync.WaitGroup
	for name, content := range map[string]string{
		"test":  "idunvovkjnreovmegihjbrqlkmfrjnb",
		"test2": "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb",
	} {
		wg.Add(1)
		go func(name, content string) {
			defer wg.Done()
			if err := builder.Add(name, bytes.NewReader([]byte(content))); err != nil {
				t.Error(err)
			}
		}(name, content)
	}
	wg.Wait()

	if len(builder.files) != 2 {
		t.Error("incorrect number of files present")
	}
	if err := builder.Add("test", bytes.NewReader(nil)); err == nil {
		t.Error("duplicate name accepted")
	}

	buf := bytes.NewBuffer([]byte{})
	num, err := builder.WriteTo(buf)
	if err != nil {
		t.Error(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(Magic)) {
		t.Error("magic missing")
	}

	headerSize, _ := binaryToint64(buf.Bytes()[MagicLength:])
	var header Header
	if err := gobDecode(&header, buf.Bytes()[MagicLength+HeaderSizeNumberLength:DataOffset(headerSize)]); err != nil {
		t.Fatal(err)
	}
	last := header.Index[len(header.Index)-1]
	if DataOffset(headerSize)+last.Offset+last.CompressedSize != num {
		t.Errorf("index does not cover the %d bytes written", num)
	}
}

func TestCloseRemovesTemp(t *testing.T) {
	builder, err := NewBuilder(Header{Author: "devblok"})
	if err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("a", bytes.NewReader([]byte("a"))); err != nil {
		t.Fatal(err)
	}
	if err := builder.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(builder.tempDir); !os.IsNotExist(err) {
		t.Errorf("temporary dir still present: %v", err)
	}
}
