// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"

	"github.com/devblok/koruasset/content"
	"github.com/devblok/koruasset/utility/kar"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil {
		if u.Name != "" {
			currentUserName = u.Name
		} else {
			currentUserName = u.Username
		}
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing (default: current user)")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the archive given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	list            = flag.String("l", "", "List the contents of the archive given")
	dstFile         = flag.String("f", "out.kar", "Destination file when compressing, destination folder when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	ops := 0
	for _, op := range []string{*extract, *compress, *list} {
		if op != "" {
			ops++
		}
	}
	if ops > 1 {
		log.Fatal(errors.New("only one operation at a time"))
	}

	var err error
	switch {
	case *extract != "":
		dst := *dstFile
		if !isFlagSet("f") {
			dst = "."
		}
		err = extractFiles(*extract, dst)
	case *compress != "":
		err = compressFiles(*compress, *dstFile)
	case *list != "":
		err = listFiles(*list, os.Stdout)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func compressFiles(src, dstPath string) error {
	if _, err := os.Stat(dstPath); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	if err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	for _, ftc := range filesToCompress {
		rel, err := filepath.Rel(src, ftc)
		if err != nil || rel == "." {
			rel = filepath.Base(ftc)
		}
		if err := addFile(karBuilder, content.Clean(rel), ftc); err != nil {
			return err
		}
		log.WithField("file", rel).Debug("compressed")
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	n, err := karBuilder.WriteTo(dst)
	if err != nil {
		dst.Close()
		return err
	}
	log.WithFields(log.Fields{
		"archive": dstPath,
		"files":   karBuilder.Len(),
		"bytes":   n,
	}).Info("archive written")
	return dst.Close()
}

func addFile(b *kar.Builder, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(name, f)
}

func openArchive(path string) (*kar.Archive, io.Closer, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	archive, err := kar.Open(ra)
	if err != nil {
		ra.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return archive, ra, nil
}

func extractFiles(src, dstDir string) error {
	archive, closer, err := openArchive(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, name := range archive.Names() {
		clean := content.Clean(name)
		if clean == "" {
			return fmt.Errorf("%w: bad file name %q", kar.ErrFileFormat, name)
		}
		target := filepath.Join(dstDir, filepath.FromSlash(clean))
		if err := extractFile(archive, name, target); err != nil {
			return err
		}
		log.WithField("file", clean).Debug("extracted")
	}
	log.WithFields(log.Fields{
		"archive": src,
		"files":   len(archive.Names()),
		"into":    dstDir,
	}).Info("archive extracted")
	return nil
}

func extractFile(archive *kar.Archive, name, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	r, err := archive.Open(name)
	if err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func listFiles(src string, w io.Writer) error {
	archive, closer, err := openArchive(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	h := archive.Header()
	fmt.Fprintf(w, "author: %s\nversion: %d\ncreated: %s\n",
		h.Author, h.Version, time.Unix(h.DateCreated, 0).UTC().Format(time.RFC3339))
	for _, name := range archive.Names() {
		entry, _ := archive.Stat(name)
		fmt.Fprintf(w, "%10d %10d %s\n", entry.Size, entry.CompressedSize, name)
	}
	return nil
}
