package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolScope/internal/model"
)

func holdingID(tokenID *big.Int, vault string) string {
	return model.JoinID(hexutil.EncodeBig(tokenID), vault)
}

func amountAt(amounts []*big.Int, i int) *big.Int {
	if i < len(amounts) && amounts[i] != nil {
		return amounts[i]
	}
	return big.NewInt(0)
}

// TransformMintAmounts pins every amount to 1 for ERC-721 vaults, whose
// events do not carry meaningful amounts.
func TransformMintAmounts(vault *model.Vault, nftIDs, amounts []*big.Int) []*big.Int {
	if vault.Is1155 {
		return amounts
	}
	out := make([]*big.Int, len(nftIDs))
	for i := range nftIDs {
		out[i] = big.NewInt(1)
	}
	return out
}

// AddToHoldings records custody of nftIDs. ERC-1155 amounts accumulate while
// ERC-721 holdings stay at 1. It returns the net number of units added.
func (h *Handlers) AddToHoldings(ctx context.Context, vault *model.Vault, nftIDs, amounts []*big.Int, date uint64) (*big.Int, error) {
	added := big.NewInt(0)
	for i, tokenID := range nftIDs {
		if tokenID == nil {
			continue
		}
		id := holdingID(tokenID, vault.ID)
		holding, _, err := h.holdings.GetOrCreate(ctx, id, func() model.Holding {
			return model.Holding{ID: id, Vault: vault.ID, TokenID: new(big.Int).Set(tokenID), Amount: big.NewInt(0)}
		})
		if err != nil {
			return nil, err
		}
		before := new(big.Int).Set(holding.Amount)
		holding.DateAdded = date
		if vault.Is1155 {
			holding.Amount = new(big.Int).Add(holding.Amount, amountAt(amounts, i))
		} else {
			holding.Amount = big.NewInt(1)
		}
		if err := h.holdings.Save(ctx, holding); err != nil {
			return nil, err
		}
		added.Add(added, new(big.Int).Sub(holding.Amount, before))
	}
	return added, nil
}

// RemoveFromHoldings releases one unit per listed id, never below zero, and
// deletes holdings that reach zero. It returns the number of units removed.
func (h *Handlers) RemoveFromHoldings(ctx context.Context, vault string, nftIDs []*big.Int) (*big.Int, error) {
	removed := big.NewInt(0)
	for _, tokenID := range nftIDs {
		if tokenID == nil {
			continue
		}
		id := holdingID(tokenID, vault)
		holding, err := h.holdings.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if holding == nil {
			continue
		}
		if holding.Amount.Sign() > 0 {
			holding.Amount = new(big.Int).Sub(holding.Amount, big.NewInt(1))
			removed.Add(removed, big.NewInt(1))
		}
		if holding.Amount.Sign() == 0 {
			if err := h.holdings.Remove(ctx, id); err != nil {
				return nil, err
			}
			continue
		}
		if err := h.holdings.Save(ctx, holding); err != nil {
			return nil, err
		}
	}
	return removed, nil
}
