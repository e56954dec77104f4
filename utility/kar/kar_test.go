// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devblok/koruasset/utility/kar"
)

var (
	testString1 = "idunvovkjnreovmegihjbrqlkmfrjnb"
	testString2 = "idunvovkjnreovmsdvwrvnervnreegihjbrqlkmfrjnb"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	builder, err := kar.NewBuilder(kar.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
		Version:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()

	for name, content := range files {
		if err := builder.Add(name, strings.NewReader(content)); err != nil {
			t.Fatal(err)
		}
	}

	buf := bytes.NewBuffer([]byte{})
	if written, err := builder.WriteTo(buf); err != nil {
		t.Fatal(err)
	} else if written != int64(buf.Len()) {
		t.Errorf("reported %d written, buffer holds %d", written, buf.Len())
	}
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	data := buildArchive(t, map[string]string{"test": testString1, "test2": testString2})

	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	f, err := ar.Open("test")
	if err != nil {
		t.Fatal(err)
	}
	if f.Size() != int64(len(testString1)) {
		t.Errorf("size %d, expected %d", f.Size(), len(testString1))
	}

	result := make([]byte, len(testString1))
	if _, err := io.ReadFull(f, result); err != nil {
		t.Error(err)
	}

	if strings.Compare(string(result), testString1) != 0 {
		t.Error("test string does not match up")
	}
}

func TestCreateAndReadAll(t *testing.T) {
	data := buildArchive(t, map[string]string{"test": testString1, "test2": testString2, "empty": ""})

	ar, err := kar.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	for name, expected := range map[string]string{"test": testString1, "test2": testString2, "empty": ""} {
		f, err := ar.ReadAll(name)
		if err != nil {
			t.Error(err)
		}
		if strings.Compare(string(f), expected) != 0 {
			t.Errorf("%s does not match up", name)
		}
	}

	if names := ar.Names(); len(names) != 3 || names[0] != "empty" {
		t.Errorf("unexpected names %v", names)
	}
	if ar.Header().Author != "devblok" {
		t.Error("header author lost")
	}
}

func TestNotFound(t *testing.T) {
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, map[string]string{"a": "b"})))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ar.Open("missing"); !errors.Is(err, kar.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNotAnArchive(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("TAR\x00aaaaaaaa"),
		[]byte("KAR\x00\xff\xff\xff\xff\xff\xff\xff\x7f"),
		[]byte("KAR\x00\x04\x00\x00\x00\x00\x00\x00\x00junk"),
	} {
		if _, err := kar.Open(bytes.NewReader(data)); !errors.Is(err, kar.ErrFileFormat) {
			t.Errorf("%q: expected ErrFileFormat, got %v", data, err)
		}
	}
}

func TestConcurrentRead(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 16; i++ {
		files[string(rune('a'+i))] = strings.Repeat(testString2, i+1)
	}
	ar, err := kar.Open(bytes.NewReader(buildArchive(t, files)))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for name, expected := range files {
		wg.Add(1)
		go func(name, expected string) {
			defer wg.Done()
			got, err := ar.ReadAll(name)
			if err != nil {
				t.Error(err)
				return
			}
			if string(got) != expected {
				t.Errorf("%s does not match up", name)
			}
		}(name, expected)
	}
	wg.Wait()
}
