package projector

import (
	"context"

	caskerrors "github.com/cask-indexer/internal/errors"
	"github.com/cask-indexer/internal/events"
	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/types"
	"github.com/cask-indexer/internal/units"
)

func (p *Projector) handleAssetDeposited(ctx context.Context, ev *events.AssetDeposited) error {
	cask, err := p.loadCask(ctx)
	if err != nil {
		return err
	}

	depositAmount := units.ScaleDown(ev.BaseAssetAmount, units.VaultDecimals)
	cask.TotalDepositAmount = cask.TotalDepositAmount.Add(depositAmount)
	cask.TotalDepositCount++
	if err := p.store.PutCask(ctx, cask); err != nil {
		return caskerrors.NewStore("cask", cask.ID, err)
	}

	user, err := p.findOrCreateUser(ctx, addrID(ev.Participant), ev.Timestamp)
	if err != nil {
		return err
	}
	user.DepositAmount = user.DepositAmount.Add(depositAmount)
	user.DepositCount++
	user.Balance = user.Balance.Add(depositAmount)
	if err := p.store.PutUser(ctx, user); err != nil {
		return caskerrors.NewStore("user", user.ID, err)
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Participant), ev.Timestamp)
	if err != nil {
		return err
	}
	txn := &models.Transaction{
		ID:           ev.RecordID(),
		Type:         "AssetDeposit",
		Timestamp:    ev.Timestamp,
		Consumer:     consumer.ID,
		AssetAddress: addrID(ev.Asset),
		Amount:       depositAmount,
	}
	if err := p.store.AppendTransaction(ctx, txn); err != nil {
		return caskerrors.NewStore("transaction", txn.ID, err)
	}
	return nil
}

func (p *Projector) handleAssetWithdrawn(ctx context.Context, ev *events.AssetWithdrawn) error {
	cask, err := p.loadCask(ctx)
	if err != nil {
		return err
	}

	withdrawAmount := units.ScaleDown(ev.BaseAssetAmount, units.VaultDecimals)
	cask.TotalWithdrawAmount = cask.TotalWithdrawAmount.Add(withdrawAmount)
	cask.TotalWithdrawCount++
	if err := p.store.PutCask(ctx, cask); err != nil {
		return caskerrors.NewStore("cask", cask.ID, err)
	}

	user, err := p.findOrCreateUser(ctx, addrID(ev.Participant), ev.Timestamp)
	if err != nil {
		return err
	}
	user.WithdrawAmount = user.WithdrawAmount.Add(withdrawAmount)
	user.WithdrawCount++
	user.Balance = user.Balance.Sub(withdrawAmount)
	if err := p.store.PutUser(ctx, user); err != nil {
		return caskerrors.NewStore("user", user.ID, err)
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.Participant), ev.Timestamp)
	if err != nil {
		return err
	}
	txn := &models.Transaction{
		ID:           ev.RecordID(),
		Type:         "AssetWithdrawal",
		Timestamp:    ev.Timestamp,
		Consumer:     consumer.ID,
		AssetAddress: addrID(ev.Asset),
		Amount:       withdrawAmount,
	}
	if err := p.store.AppendTransaction(ctx, txn); err != nil {
		return caskerrors.NewStore("transaction", txn.ID, err)
	}
	return nil
}

func (p *Projector) handlePayment(ctx context.Context, ev *events.Payment) error {
	cask, err := p.loadCask(ctx)
	if err != nil {
		return err
	}

	amount := units.ScaleDown(ev.BaseAssetAmount, units.VaultDecimals)
	protocolFee := units.ScaleDown(ev.ProtocolFee, units.VaultDecimals)
	networkFee := units.ScaleDown(ev.NetworkFee, units.VaultDecimals)

	cask.TotalProtocolPayments = cask.TotalProtocolPayments.Add(amount)
	cask.TotalProtocolFees = cask.TotalProtocolFees.Add(protocolFee)
	cask.TotalNetworkFees = cask.TotalNetworkFees.Add(networkFee)
	if err := p.store.PutCask(ctx, cask); err != nil {
		return caskerrors.NewStore("cask", cask.ID, err)
	}

	fromUser, err := p.findOrCreateUser(ctx, addrID(ev.From), ev.Timestamp)
	if err != nil {
		return err
	}
	fromUser.Balance = fromUser.Balance.Sub(amount)
	if err := p.store.PutUser(ctx, fromUser); err != nil {
		return caskerrors.NewStore("user", fromUser.ID, err)
	}

	// The receiver nets the payment minus both fee components.
	toUser, err := p.findOrCreateUser(ctx, addrID(ev.To), ev.Timestamp)
	if err != nil {
		return err
	}
	toUser.Balance = toUser.Balance.Add(amount).Sub(protocolFee).Sub(networkFee)
	if err := p.store.PutUser(ctx, toUser); err != nil {
		return caskerrors.NewStore("user", toUser.ID, err)
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.From), ev.Timestamp)
	if err != nil {
		return err
	}
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.To), ev.Timestamp)
	if err != nil {
		return err
	}
	provider.TotalPaymentsReceived = provider.TotalPaymentsReceived.Add(amount)
	if err := p.store.PutProvider(ctx, provider); err != nil {
		return caskerrors.NewStore("provider", provider.ID, err)
	}

	txn := &models.Transaction{
		ID:        ev.RecordID(),
		Type:      "Payment",
		Timestamp: ev.Timestamp,
		Consumer:  consumer.ID,
		Provider:  provider.ID,
		Amount:    amount,
	}
	if err := p.store.AppendTransaction(ctx, txn); err != nil {
		return caskerrors.NewStore("transaction", txn.ID, err)
	}
	return nil
}

func (p *Projector) handleTransferValue(ctx context.Context, ev *events.TransferValue) error {
	amount := units.ScaleDown(ev.BaseAssetAmount, units.VaultDecimals)

	fromUser, err := p.findOrCreateUser(ctx, addrID(ev.From), ev.Timestamp)
	if err != nil {
		return err
	}
	fromUser.Balance = fromUser.Balance.Sub(amount)
	if err := p.store.PutUser(ctx, fromUser); err != nil {
		return caskerrors.NewStore("user", fromUser.ID, err)
	}

	toUser, err := p.findOrCreateUser(ctx, addrID(ev.To), ev.Timestamp)
	if err != nil {
		return err
	}
	toUser.Balance = toUser.Balance.Add(amount)
	if err := p.store.PutUser(ctx, toUser); err != nil {
		return caskerrors.NewStore("user", toUser.ID, err)
	}

	consumer, err := p.findOrCreateConsumer(ctx, addrID(ev.From), ev.Timestamp)
	if err != nil {
		return err
	}
	provider, err := p.findOrCreateProvider(ctx, addrID(ev.To), ev.Timestamp)
	if err != nil {
		return err
	}

	txn := &models.Transaction{
		ID:        ev.RecordID(),
		Type:      "TransferValue",
		Timestamp: ev.Timestamp,
		Consumer:  consumer.ID,
		Provider:  provider.ID,
		Amount:    amount,
	}
	if err := p.store.AppendTransaction(ctx, txn); err != nil {
		return caskerrors.NewStore("transaction", txn.ID, err)
	}
	return nil
}

func (p *Projector) handleSetFundingSource(ctx context.Context, ev *events.SetFundingSource) error {
	user, err := p.findOrCreateUser(ctx, addrID(ev.Participant), ev.Timestamp)
	if err != nil {
		return err
	}
	user.FundingSource = types.FundingSourceFromCode(ev.FundingSource)
	user.FundingAsset = addrID(ev.FundingAsset)
	if err := p.store.PutUser(ctx, user); err != nil {
		return caskerrors.NewStore("user", user.ID, err)
	}
	return nil
}
