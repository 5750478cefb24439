package keeper

import (
	"context"
	"encoding/json"
	"fmt"
)

// getValue decodes the JSON document stored at key into v and reports
// whether it was present.
func (k Keeper) getValue(ctx context.Context, key []byte, v any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %x: %w", key, err)
	}
	return true, nil
}

// setValue stores v as a JSON document at key.
func (k Keeper) setValue(ctx context.Context, key []byte, v any) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %x: %w", key, err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// mustGetValue is getValue for state the module wrote itself; a decoding
// failure means the store is corrupt.
func (k Keeper) mustGetValue(ctx context.Context, key []byte, v any) bool {
	found, err := k.getValue(ctx, key, v)
	if err != nil {
		panic(err)
	}
	return found
}

func unmarshalValue(bz []byte, v any) error {
	if err := json.Unmarshal(bz, v); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}
