package network

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
)

var snapshotTimer = metrics.GetOrRegisterTimer("network/snapshot", nil)

// GetGameSnapshot reads the whole game as seen by owner. Every read must
// succeed; the first failure cancels the others and no snapshot is returned.
func (nm *NetworkManager) GetGameSnapshot(ctx context.Context, owner common.Address) (*data.GameSnapshot, error) {
	start := time.Now()

	count, err := nm.GetNumberOfLucky7Numbers(ctx)
	if err != nil {
		log.Error("getGameSnapshot - numberOfLucky7Numbers", "error", err)
		return nil, err
	}
	if count > maxLucky7Numbers {
		err = errors.Wrapf(ErrInvalidResponse, "%s returned %d", FuncNumberOfLucky7Numbers, count)
		log.Error("getGameSnapshot - numberOfLucky7Numbers", "error", err)
		return nil, err
	}

	numbers := make([]uint64, count)
	tickets := make([]data.Lucky7Ticket, count)
	var generatePrice, sellPrice *big.Int
	var userValues data.UserParameters
	var prize data.PendingWithdrawal

	g, gctx := errgroup.WithContext(ctx)
	if nm.cfg.Network.MaxParallelReads > 0 {
		g.SetLimit(nm.cfg.Network.MaxParallelReads)
	}

	for i := uint64(0); i < count; i++ {
		i := i
		g.Go(func() (err error) {
			numbers[i], err = nm.GetLucky7Number(gctx, i)
			return err
		})
		g.Go(func() (err error) {
			tickets[i].Ticket, err = nm.GetLucky7TicketValue(gctx, i)
			return err
		})
		g.Go(func() (err error) {
			tickets[i].Owner, err = nm.GetLucky7TicketOwner(gctx, i)
			return err
		})
		g.Go(func() (err error) {
			tickets[i].Difference, err = nm.GetLucky7TicketDifference(gctx, i)
			return err
		})
	}

	g.Go(func() (err error) {
		generatePrice, err = nm.GetGenerateTicketPrice(gctx)
		return err
	})
	g.Go(func() (err error) {
		sellPrice, err = nm.GetSellTicketPrice(gctx)
		return err
	})
	g.Go(func() (err error) {
		userValues, err = nm.GetUserValues(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		prize, err = nm.GetPendingWithdrawal(gctx, owner)
		return err
	})

	if err = g.Wait(); err != nil {
		log.Error("getGameSnapshot", "owner", owner.Hex(), "error", err)
		return nil, err
	}

	snapshotTimer.UpdateSince(start)

	return &data.GameSnapshot{
		Owner:               owner,
		Lucky7Numbers:       numbers,
		Lucky7Tickets:       tickets,
		GenerateTicketPrice: generatePrice,
		SellTicketPrice:     sellPrice,
		UserValues:          userValues,
		CurrentPrize:        prize,
		PrizeGameID:         prize.GameID,
		ReadAt:              time.Now(),
	}, nil
}
