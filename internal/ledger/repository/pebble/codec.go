package pebble

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/shopspring/decimal"
)

type blockRecord struct {
	Number       uint64     `cbor:"1,keyasint"`
	Timestamp    int64      `cbor:"2,keyasint"`
	Placeholder  bool       `cbor:"3,keyasint,omitempty"`
	Transactions []txRecord `cbor:"4,keyasint"`
}

type txRecord struct {
	From  string  `cbor:"1,keyasint"`
	To    *string `cbor:"2,keyasint"`
	Value string  `cbor:"3,keyasint"`
	Data  []byte  `cbor:"4,keyasint,omitempty"`
}

var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

func encodeBlock(b model.Block) ([]byte, error) {
	rec := blockRecord{
		Number:       b.Number,
		Timestamp:    b.Timestamp.Unix(),
		Placeholder:  b.Placeholder,
		Transactions: make([]txRecord, 0, len(b.Transactions)),
	}
	for _, tx := range b.Transactions {
		r := txRecord{
			From:  string(tx.From),
			Value: tx.Value.String(),
			Data:  tx.Data,
		}
		if tx.To != nil {
			to := string(*tx.To)
			r.To = &to
		}
		rec.Transactions = append(rec.Transactions, r)
	}

	data, err := encMode.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode block %d: %w", b.Number, err)
	}
	return data, nil
}

func decodeBlock(data []byte) (model.Block, error) {
	var rec blockRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return model.Block{}, fmt.Errorf("decode block: %w", err)
	}

	b := model.Block{
		Number:       rec.Number,
		Timestamp:    time.Unix(rec.Timestamp, 0).UTC(),
		Placeholder:  rec.Placeholder,
		Transactions: make([]model.Transaction, 0, len(rec.Transactions)),
	}
	for _, r := range rec.Transactions {
		value, err := decimal.NewFromString(r.Value)
		if err != nil {
			return model.Block{}, fmt.Errorf("decode value of block %d: %w", rec.Number, err)
		}
		tx := model.Transaction{
			From:  model.Address(r.From),
			Value: value,
			Data:  r.Data,
		}
		if r.To != nil {
			to := model.Address(*r.To)
			tx.To = &to
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return b, nil
}
