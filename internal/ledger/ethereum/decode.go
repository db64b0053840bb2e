package ethereum

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/blockgraph7000-backend/internal/ledger/model"
	"github.com/shopspring/decimal"
)

// valueExp scales base units to whole coins: value / 10^18.
const valueExp = -18

var errNullBlock = errors.New("block not available")

type rpcBlock struct {
	Number       *hexutil.Uint64  `json:"number"`
	Timestamp    *hexutil.Uint64  `json:"timestamp"`
	Transactions []rpcTransaction `json:"transactions"`
}

type rpcTransaction struct {
	From  *string       `json:"from"`
	To    *string       `json:"to"`
	Value *hexutil.Big  `json:"value"`
	Input hexutil.Bytes `json:"input"`
}

// decodeBlock converts a raw eth_getBlockByNumber result into a block.
func decodeBlock(raw json.RawMessage, want uint64) (model.Block, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.Block{}, errNullBlock
	}

	var src rpcBlock
	if err := json.Unmarshal(raw, &src); err != nil {
		return model.Block{}, fmt.Errorf("unmarshal block: %w", err)
	}
	if src.Number == nil {
		return model.Block{}, errors.New("block number missing")
	}
	if uint64(*src.Number) != want {
		return model.Block{}, fmt.Errorf("block number %d does not match requested %d", uint64(*src.Number), want)
	}
	if src.Timestamp == nil {
		return model.Block{}, errors.New("block timestamp missing")
	}
	ts := uint64(*src.Timestamp)
	if ts > uint64(1<<63-1) {
		return model.Block{}, fmt.Errorf("block timestamp %d overflows", ts)
	}

	block := model.Block{
		Number:       want,
		Timestamp:    time.Unix(int64(ts), 0).UTC(),
		Transactions: make([]model.Transaction, 0, len(src.Transactions)),
	}
	for i, tx := range src.Transactions {
		decoded, err := decodeTransaction(tx)
		if err != nil {
			return model.Block{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		block.Transactions = append(block.Transactions, decoded)
	}
	return block, nil
}

func decodeTransaction(tx rpcTransaction) (model.Transaction, error) {
	if tx.From == nil || *tx.From == "" {
		return model.Transaction{}, errors.New("sender missing")
	}
	if tx.Value == nil {
		return model.Transaction{}, errors.New("value missing")
	}

	out := model.Transaction{
		From:  normalizeAddress(*tx.From),
		Value: decimal.NewFromBigInt((*big.Int)(tx.Value), valueExp),
		Data:  []byte(tx.Input),
	}
	if tx.To != nil && *tx.To != "" {
		to := normalizeAddress(*tx.To)
		out.To = &to
	}
	return out, nil
}

func normalizeAddress(s string) model.Address {
	return model.Address(strings.ToLower(s))
}
