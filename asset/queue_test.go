package asset_test

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruasset/asset"
)

type memResolver map[string][]byte

func (m memResolver) Find(rel string) (string, error) {
	if _, ok := m[rel]; !ok {
		return "", fmt.Errorf("%w: %s", asset.ErrResourceNotFound, rel)
	}
	return "mem:" + rel, nil
}

func (m memResolver) ListDirectory(dir string) ([]string, error) {
	var names []string
	for name := range m {
		if path.Dir(name) == dir {
			names = append(names, path.Base(name))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m memResolver) ReadFile(rel string) ([]byte, error) {
	data, ok := m[rel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrResourceNotFound, rel)
	}
	return data, nil
}

func storeText(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	data, err := r.ReadFile(req.Path)
	if err != nil {
		return asset.Commit{}, err
	}
	return asset.Keep(req.Kind, req.Alias, string(data)), nil
}

func TestQueueFIFO(t *testing.T) {
	c := qt.New(t)

	q := asset.NewQueue(memResolver{"a": []byte("1"), "b": []byte("2"), "c": []byte("3")})
	q.Register(asset.KindLayout, asset.LoaderFunc(storeText))
	q.Enqueue(asset.KindLayout, "a", "first", nil)
	q.Enqueue(asset.KindLayout, "b", "second", nil)
	q.Enqueue(asset.KindLayout, "c", "third", nil)
	c.Assert(q.Len(), qt.Equals, 3)

	var order []string
	for q.HasNext() {
		commit, err := q.ProcessNext()
		c.Assert(err, qt.IsNil)
		order = append(order, commit.Alias)
		c.Assert(commit.Request.Alias, qt.Equals, commit.Alias)
	}
	c.Assert(order, qt.DeepEquals, []string{"first", "second", "third"})

	_, err := q.ProcessNext()
	c.Assert(err, qt.Equals, asset.ErrQueueEmpty)
}

func TestQueueGrowsWhileDraining(t *testing.T) {
	c := qt.New(t)

	q := asset.NewQueue(memResolver{})
	q.Register(asset.KindAtlas, asset.LoaderFunc(func(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
		for i := 0; i < 3; i++ {
			q.Enqueue(asset.KindTexture, req.Path, asset.Join(req.Alias, fmt.Sprint(i)), nil)
		}
		return asset.Nothing(), nil
	}))
	q.Register(asset.KindTexture, asset.LoaderFunc(func(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
		return asset.Keep(req.Kind, req.Alias, true), nil
	}))

	q.Enqueue(asset.KindAtlas, "ui", "ui", nil)
	var aliases []string
	for q.HasNext() {
		commit, err := q.ProcessNext()
		c.Assert(err, qt.IsNil)
		aliases = append(aliases, commit.Alias)
	}
	c.Assert(aliases, qt.DeepEquals, []string{"", "ui/0", "ui/1", "ui/2"})
}

func TestQueueUnknownKind(t *testing.T) {
	c := qt.New(t)

	q := asset.NewQueue(memResolver{})
	q.Enqueue(asset.KindSound, "music/theme", "theme", nil)
	_, err := q.ProcessNext()
	c.Assert(err, qt.ErrorIs, asset.ErrUnknownAssetKind)

	var le *asset.LoadError
	c.Assert(errors.As(err, &le), qt.IsTrue)
	c.Assert(le.Alias, qt.Equals, "theme")
	c.Assert(le.Path, qt.Equals, "music/theme")
	c.Assert(le.Kind, qt.Equals, asset.KindSound)
	c.Assert(err.Error(), qt.Contains, `"theme"`)
}

func TestQueueLastRegistrationWins(t *testing.T) {
	c := qt.New(t)

	q := asset.NewQueue(memResolver{"x": []byte("data")})
	q.Register(asset.KindShader, asset.LoaderFunc(storeText))
	q.Register(asset.KindShader, asset.LoaderFunc(func(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
		return asset.Keep(req.Kind, req.Alias, "override"), nil
	}))
	q.Enqueue(asset.KindShader, "x", "x", nil)
	commit, err := q.ProcessNext()
	c.Assert(err, qt.IsNil)
	c.Assert(commit.Value, qt.Equals, "override")
}

func TestQueueLoaderErrorNamesRequest(t *testing.T) {
	c := qt.New(t)

	q := asset.NewQueue(memResolver{})
	q.Register(asset.KindLayout, asset.LoaderFunc(storeText))
	q.Enqueue(asset.KindLayout, "ui/missing.yaml", "menu", nil)
	_, err := q.ProcessNext()
	c.Assert(err, qt.ErrorIs, asset.ErrResourceNotFound)
	c.Assert(strings.Contains(err.Error(), "ui/missing.yaml"), qt.IsTrue)
}

func TestKindNames(t *testing.T) {
	c := qt.New(t)

	for _, k := range []asset.Kind{asset.KindTexture, asset.KindShader, asset.KindFont, asset.KindAtlas,
		asset.KindLayout, asset.KindSound, asset.KindModel, asset.KindAnimation, asset.KindSprite} {
		parsed, err := asset.ParseKind(strings.ToUpper(k.String()))
		c.Assert(err, qt.IsNil)
		c.Assert(parsed, qt.Equals, k)
	}
	_, err := asset.ParseKind("hologram")
	c.Assert(err, qt.ErrorIs, asset.ErrUnknownAssetKind)
	c.Assert(asset.Kind(99).String(), qt.Equals, "kind(99)")

	// tags are persisted and must not move
	c.Assert(int(asset.KindAtlas), qt.Equals, 3)
	c.Assert(int(asset.KindSprite), qt.Equals, 8)
}

func TestJoinSplit(t *testing.T) {
	c := qt.New(t)

	alias := asset.Join("ui/icons", "close")
	c.Assert(alias, qt.Equals, "ui/icons/close")
	parent, entry, ok := asset.Split(alias)
	c.Assert(ok, qt.IsTrue)
	c.Assert(parent, qt.Equals, "ui/icons")
	c.Assert(entry, qt.Equals, "close")

	_, entry, ok = asset.Split("plain")
	c.Assert(ok, qt.IsFalse)
	c.Assert(entry, qt.Equals, "plain")
}
