// Package source gathers every raw input of one catalog build into a Bundle.
//
// A Bundle is also the unit of persistence: its encoding is the snapshot
// byte form, and restoring a snapshot means rebuilding from the bundle.
package source

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/pogodata/internal/locale"
)

// ErrEmptyBundle is returned by Decode for an empty payload.
var ErrEmptyBundle = errors.New("empty bundle payload")

// Locale is one raw locale resource.
type Locale struct {
	Format string `json:"format"`
	Body   []byte `json:"body"`
}

// Resource converts the payload for the locale builder.
func (l Locale) Resource() locale.Resource {
	return locale.Resource{Format: locale.Format(l.Format), Body: l.Body}
}

// Bundle holds the raw bytes of every input. Feed fields are nil when the
// feed is not configured.
type Bundle struct {
	FetchedAt    time.Time `json:"fetched_at"`
	GameMaster   []byte    `json:"gamemaster"`
	Protos       []byte    `json:"protos"`
	Locales      []Locale  `json:"locales"`
	Raids        []byte    `json:"raids,omitempty"`
	Guards       []byte    `json:"guards,omitempty"`
	Quests       []byte    `json:"quests,omitempty"`
	Events       []byte    `json:"events,omitempty"`
	IconManifest []byte    `json:"icon_manifest,omitempty"`
}

// LocaleResources returns the locale payloads in merge order.
func (b *Bundle) LocaleResources() []locale.Resource {
	out := make([]locale.Resource, len(b.Locales))
	for i, l := range b.Locales {
		out[i] = l.Resource()
	}
	return out
}

// Encode returns the snapshot byte form of the bundle.
func (b *Bundle) Encode() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encoding bundle: %w", err)
	}
	return data, nil
}

// Decode parses the snapshot byte form produced by Encode.
//
// Postcondition: Returns a non-nil Bundle or a non-nil error.
func Decode(data []byte) (*Bundle, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBundle
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	return &b, nil
}

// Digest returns the hex BLAKE2b-256 digest of encoded bundle bytes.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Static serves a fixed bundle. It lets a catalog be built from stored or
// in-memory inputs without any network access.
type Static struct {
	Bundle *Bundle
}

// Load returns the fixed bundle.
func (s Static) Load(ctx context.Context) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Bundle == nil {
		return nil, ErrEmptyBundle
	}
	return s.Bundle, nil
}
