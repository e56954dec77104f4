package asset

import (
	"fmt"
	"strings"
)

// Kind tags which loader handles a request and where its result is stored.
// Values are persisted by content and scripts, new kinds are appended
// and existing values never change.
type Kind uint16

// Asset kinds
const (
	KindTexture   Kind = 0
	KindShader    Kind = 1
	KindFont      Kind = 2
	KindAtlas     Kind = 3
	KindLayout    Kind = 4
	KindSound     Kind = 5
	KindModel     Kind = 6
	KindAnimation Kind = 7
	KindSprite    Kind = 8
)

var kindNames = map[Kind]string{
	KindTexture:   "texture",
	KindShader:    "shader",
	KindFont:      "font",
	KindAtlas:     "atlas",
	KindLayout:    "layout",
	KindSound:     "sound",
	KindModel:     "model",
	KindAnimation: "animation",
	KindSprite:    "sprite",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// ParseKind maps a kind name, as written in manifests, to its tag.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAssetKind, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
