// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestCompressExtractList(t *testing.T) {
	c := qt.New(t)

	src := c.TempDir()
	files := map[string]string{
		"readme.txt":         "hello",
		"atlases/ui/a.png":   "not really a png",
		"shaders/basic.frag": "#version 450\n",
		"empty/nothing.txt":  "",
	}
	for name, data := range files {
		p := filepath.Join(src, filepath.FromSlash(name))
		c.Assert(os.MkdirAll(filepath.Dir(p), 0755), qt.IsNil)
		c.Assert(ioutil.WriteFile(p, []byte(data), 0644), qt.IsNil)
	}

	archive := filepath.Join(c.TempDir(), "out.kar")
	c.Assert(compressFiles(src, archive), qt.IsNil)
	c.Assert(compressFiles(src, archive), qt.ErrorMatches, "destination file exists.*")

	var listing bytes.Buffer
	c.Assert(listFiles(archive, &listing), qt.IsNil)
	c.Assert(listing.String(), qt.Contains, "atlases/ui/a.png")
	c.Assert(listing.String(), qt.Contains, "author: "+currentUserName)

	dst := c.TempDir()
	c.Assert(extractFiles(archive, dst), qt.IsNil)
	for name, data := range files {
		got, err := ioutil.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		c.Assert(err, qt.IsNil)
		c.Assert(string(got), qt.Equals, data)
	}

	// extracting twice does not overwrite
	c.Assert(extractFiles(archive, dst), qt.Not(qt.IsNil))
}

func TestOpenArchiveRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "junk.kar")
	qt.Assert(t, ioutil.WriteFile(p, []byte("definitely not an archive"), 0644), qt.IsNil)
	_, _, err := openArchive(p)
	qt.Assert(t, err, qt.ErrorMatches, `.*junk.kar: kar: .*`)
}
