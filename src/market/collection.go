package market

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type CollectionEventKind int

const (
	// Forward-compatibility variant, unknown (section, method) pairs land here
	CollectionEventUnrecognized CollectionEventKind = iota
	CollectionEventTransfer
	CollectionEventApproved
	CollectionEventItemDestroyed
	CollectionEventCollectionDestroyed
	CollectionEventItemCreated
	CollectionEventCollectionCreated
)

// Raw extrinsic event envelope as the indexer delivers it. The upstream
// schema only guarantees stable positional argument order per method,
// not stable field names, hence the positionally keyed argument map.
type RawCollectionEvent struct {
	Section     string                     `json:"section"`
	Method      string                     `json:"method"`
	BlockNumber uint64                     `json:"blockNumber"`
	Args        map[string]json.RawMessage `json:"args"`
}

// Normalized collection-wide event
type CollectionEvent struct {
	Kind CollectionEventKind

	CollectionId uint32
	TokenId      uint32

	Owner    string
	To       string
	From     string
	Approved string

	BlockNumber uint64
}

// TransformCollectionEvent maps a raw envelope onto the normalized shape.
// Unrecognized (section, method) pairs are not an error, new upstream
// methods must not break the stream.
func TransformCollectionEvent(raw *RawCollectionEvent) (event *CollectionEvent, err error) {
	event = &CollectionEvent{
		Kind:        CollectionEventUnrecognized,
		BlockNumber: raw.BlockNumber,
	}

	switch raw.Section + "." + raw.Method {
	case "common.Transfer":
		event.Kind = CollectionEventTransfer
		if event.CollectionId, err = argUint32(raw, 0); err != nil {
			return nil, err
		}
		if event.TokenId, err = argUint32(raw, 1); err != nil {
			return nil, err
		}
		if event.From, err = argAddress(raw, 2); err != nil {
			return nil, err
		}
		if event.To, err = argAddress(raw, 3); err != nil {
			return nil, err
		}

	case "common.Approved":
		event.Kind = CollectionEventApproved
		if event.CollectionId, err = argUint32(raw, 0); err != nil {
			return nil, err
		}
		if event.TokenId, err = argUint32(raw, 1); err != nil {
			return nil, err
		}
		if event.Owner, err = argAddress(raw, 2); err != nil {
			return nil, err
		}
		if event.Approved, err = argAddress(raw, 3); err != nil {
			return nil, err
		}

	case "common.ItemDestroyed":
		event.Kind = CollectionEventItemDestroyed
		if event.CollectionId, err = argUint32(raw, 0); err != nil {
			return nil, err
		}
		if event.TokenId, err = argUint32(raw, 1); err != nil {
			return nil, err
		}
		if event.Owner, err = argAddress(raw, 2); err != nil {
			return nil, err
		}

	case "common.CollectionDestroyed":
		event.Kind = CollectionEventCollectionDestroyed
		if event.CollectionId, err = argUint32(raw, 0); err != nil {
			return nil, err
		}

	case "common.ItemCreated":
		event.Kind = CollectionEventItemCreated
		if event.CollectionId, err = argUint32(raw, 0); err != nil {
			return nil, err
		}
		if event.TokenId, err = argUint32(raw, 1); err != nil {
			return nil, err
		}
		if event.Owner, err = argAddress(raw, 2); err != nil {
			return nil, err
		}

	case "common.CollectionCreated":
		event.Kind = CollectionEventCollectionCreated
		if event.CollectionId, err = argUint32(raw, 0); err != nil {
			return nil, err
		}
	}

	return
}

func arg(raw *RawCollectionEvent, position int) (json.RawMessage, error) {
	value, ok := raw.Args[strconv.Itoa(position)]
	if !ok {
		return nil, fmt.Errorf("missing argument %d of %s.%s", position, raw.Section, raw.Method)
	}
	return value, nil
}

func argUint32(raw *RawCollectionEvent, position int) (out uint32, err error) {
	value, err := arg(raw, position)
	if err != nil {
		return
	}

	err = json.Unmarshal(value, &out)
	if err == nil {
		return
	}

	// Large numbers arrive quoted
	var s string
	if json.Unmarshal(value, &s) == nil {
		var parsed uint64
		parsed, err = strconv.ParseUint(s, 10, 32)
		if err != nil {
			return
		}
		return uint32(parsed), nil
	}

	return 0, fmt.Errorf("argument %d of %s.%s is not a number", position, raw.Section, raw.Method)
}

// Addresses arrive either plain or as a tagged union like
// {"substrate": "5..."} / {"ethereum": "0x..."}. When both tags are
// present the substrate one wins.
func argAddress(raw *RawCollectionEvent, position int) (out string, err error) {
	value, err := arg(raw, position)
	if err != nil {
		return
	}

	if json.Unmarshal(value, &out) == nil {
		return
	}

	var tagged struct {
		Substrate string `json:"substrate"`
		Ethereum  string `json:"ethereum"`
	}
	err = json.Unmarshal(value, &tagged)
	if err != nil {
		return "", fmt.Errorf("argument %d of %s.%s is not an address", position, raw.Section, raw.Method)
	}

	if tagged.Substrate != "" {
		return tagged.Substrate, nil
	}
	return tagged.Ethereum, nil
}
