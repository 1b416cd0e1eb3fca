package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/storage"
	"github.com/aerophilia/aerophilia-go/internal/token"
)

type restoreKind int

const (
	restoreEmpty restoreKind = iota
	restoreOK
	restoreCorrupt
	restoreExpired
)

func (k restoreKind) String() string {
	switch k {
	case restoreOK:
		return "ok"
	case restoreCorrupt:
		return "corrupt"
	case restoreExpired:
		return "expired"
	default:
		return "empty"
	}
}

type restored struct {
	kind  restoreKind
	token string
	user  model.User
}

// readStored loads the persisted pair. A missing key is not an error; the
// session simply starts logged out and whatever half is present stays put.
func (m *Manager) readStored(ctx context.Context) (restored, error) {
	tok, err := m.store.Get(ctx, KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return restored{kind: restoreEmpty}, nil
	}
	if err != nil {
		return restored{}, err
	}

	raw, err := m.store.Get(ctx, KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return restored{kind: restoreEmpty}, nil
	}
	if err != nil {
		return restored{}, err
	}

	user, ok := decodeUser(raw)
	if !ok || tok == "" {
		return restored{kind: restoreCorrupt}, nil
	}
	if token.Inspect(tok).Expired(m.now()) {
		return restored{kind: restoreExpired}, nil
	}
	return restored{kind: restoreOK, token: tok, user: user}, nil
}

// decodeUser accepts a JSON object carrying at least an id and an email.
func decodeUser(raw string) (model.User, bool) {
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return model.User{}, false
	}
	if u.ID == "" || u.Email == "" {
		return model.User{}, false
	}
	return u, true
}
