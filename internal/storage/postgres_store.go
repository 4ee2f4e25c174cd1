package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/types"
)

// PostgresStore implements Store on Postgres. One store instance is scoped
// to one chain; rows for other chains are invisible to it.
type PostgresStore struct {
	db    *PostgresDB
	chain types.ChainID
}

// NewPostgresStore creates a chain-scoped Postgres entity store.
func NewPostgresStore(db *PostgresDB, chain types.ChainID) *PostgresStore {
	return &PostgresStore{db: db, chain: chain}
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, appeared_at, balance, deposit_count, deposit_amount,
		       withdraw_count, withdraw_amount, funding_source, funding_asset
		FROM cask_users WHERE chain = $1 AND id = $2
	`
	var u models.User
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&u.ID, &u.AppearedAt, &u.Balance, &u.DepositCount, &u.DepositAmount,
		&u.WithdrawCount, &u.WithdrawAmount, &u.FundingSource, &u.FundingAsset,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return &u, nil
}

func (s *PostgresStore) PutUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO cask_users (chain, id, appeared_at, balance, deposit_count,
			deposit_amount, withdraw_count, withdraw_amount, funding_source, funding_asset)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (chain, id) DO UPDATE SET
			appeared_at = EXCLUDED.appeared_at,
			balance = EXCLUDED.balance,
			deposit_count = EXCLUDED.deposit_count,
			deposit_amount = EXCLUDED.deposit_amount,
			withdraw_count = EXCLUDED.withdraw_count,
			withdraw_amount = EXCLUDED.withdraw_amount,
			funding_source = EXCLUDED.funding_source,
			funding_asset = EXCLUDED.funding_asset
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, u.ID, u.AppearedAt, u.Balance,
		u.DepositCount, u.DepositAmount, u.WithdrawCount, u.WithdrawAmount,
		u.FundingSource, u.FundingAsset)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", u.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetConsumer(ctx context.Context, id string) (*models.Consumer, error) {
	query := `
		SELECT id, appeared_at, balance, deposit_count, deposit_amount,
		       withdraw_count, withdraw_amount,
		       total_subscription_count, active_subscription_count,
		       total_dca_count, active_dca_count,
		       total_p2p_count, active_p2p_count,
		       total_chainlink_topup_count, active_chainlink_topup_count
		FROM cask_consumers WHERE chain = $1 AND id = $2
	`
	var c models.Consumer
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&c.ID, &c.AppearedAt, &c.Balance, &c.DepositCount, &c.DepositAmount,
		&c.WithdrawCount, &c.WithdrawAmount,
		&c.TotalSubscriptionCount, &c.ActiveSubscriptionCount,
		&c.TotalDCACount, &c.ActiveDCACount,
		&c.TotalP2PCount, &c.ActiveP2PCount,
		&c.TotalChainlinkTopupCount, &c.ActiveChainlinkTopupCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load consumer %s: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresStore) PutConsumer(ctx context.Context, c *models.Consumer) error {
	query := `
		INSERT INTO cask_consumers (chain, id, appeared_at, balance, deposit_count,
			deposit_amount, withdraw_count, withdraw_amount,
			total_subscription_count, active_subscription_count,
			total_dca_count, active_dca_count,
			total_p2p_count, active_p2p_count,
			total_chainlink_topup_count, active_chainlink_topup_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (chain, id) DO UPDATE SET
			appeared_at = EXCLUDED.appeared_at,
			balance = EXCLUDED.balance,
			deposit_count = EXCLUDED.deposit_count,
			deposit_amount = EXCLUDED.deposit_amount,
			withdraw_count = EXCLUDED.withdraw_count,
			withdraw_amount = EXCLUDED.withdraw_amount,
			total_subscription_count = EXCLUDED.total_subscription_count,
			active_subscription_count = EXCLUDED.active_subscription_count,
			total_dca_count = EXCLUDED.total_dca_count,
			active_dca_count = EXCLUDED.active_dca_count,
			total_p2p_count = EXCLUDED.total_p2p_count,
			active_p2p_count = EXCLUDED.active_p2p_count,
			total_chainlink_topup_count = EXCLUDED.total_chainlink_topup_count,
			active_chainlink_topup_count = EXCLUDED.active_chainlink_topup_count
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, c.ID, c.AppearedAt, c.Balance,
		c.DepositCount, c.DepositAmount, c.WithdrawCount, c.WithdrawAmount,
		c.TotalSubscriptionCount, c.ActiveSubscriptionCount,
		c.TotalDCACount, c.ActiveDCACount,
		c.TotalP2PCount, c.ActiveP2PCount,
		c.TotalChainlinkTopupCount, c.ActiveChainlinkTopupCount)
	if err != nil {
		return fmt.Errorf("failed to save consumer %s: %w", c.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	query := `
		SELECT id, appeared_at, total_payments_received,
		       total_subscription_count, active_subscription_count,
		       trialing_subscription_count, converted_subscription_count,
		       canceled_subscription_count, paused_subscription_count,
		       past_due_subscription_count, profile_cid, profile_nonce, payment_address
		FROM cask_providers WHERE chain = $1 AND id = $2
	`
	var p models.Provider
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&p.ID, &p.AppearedAt, &p.TotalPaymentsReceived,
		&p.TotalSubscriptionCount, &p.ActiveSubscriptionCount,
		&p.TrialingSubscriptionCount, &p.ConvertedSubscriptionCount,
		&p.CanceledSubscriptionCount, &p.PausedSubscriptionCount,
		&p.PastDueSubscriptionCount, &p.ProfileCID, &p.ProfileNonce, &p.PaymentAddress,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) PutProvider(ctx context.Context, p *models.Provider) error {
	query := `
		INSERT INTO cask_providers (chain, id, appeared_at, total_payments_received,
			total_subscription_count, active_subscription_count,
			trialing_subscription_count, converted_subscription_count,
			canceled_subscription_count, paused_subscription_count,
			past_due_subscription_count, profile_cid, profile_nonce, payment_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (chain, id) DO UPDATE SET
			appeared_at = EXCLUDED.appeared_at,
			total_payments_received = EXCLUDED.total_payments_received,
			total_subscription_count = EXCLUDED.total_subscription_count,
			active_subscription_count = EXCLUDED.active_subscription_count,
			trialing_subscription_count = EXCLUDED.trialing_subscription_count,
			converted_subscription_count = EXCLUDED.converted_subscription_count,
			canceled_subscription_count = EXCLUDED.canceled_subscription_count,
			paused_subscription_count = EXCLUDED.paused_subscription_count,
			past_due_subscription_count = EXCLUDED.past_due_subscription_count,
			profile_cid = EXCLUDED.profile_cid,
			profile_nonce = EXCLUDED.profile_nonce,
			payment_address = EXCLUDED.payment_address
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, p.ID, p.AppearedAt, p.TotalPaymentsReceived,
		p.TotalSubscriptionCount, p.ActiveSubscriptionCount,
		p.TrialingSubscriptionCount, p.ConvertedSubscriptionCount,
		p.CanceledSubscriptionCount, p.PausedSubscriptionCount,
		p.PastDueSubscriptionCount, p.ProfileCID, p.ProfileNonce, p.PaymentAddress)
	if err != nil {
		return fmt.Errorf("failed to save provider %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	query := `
		SELECT id, provider, plan_id, status,
		       total_subscription_count, active_subscription_count,
		       trialing_subscription_count, converted_subscription_count,
		       canceled_subscription_count, paused_subscription_count,
		       past_due_subscription_count
		FROM cask_subscription_plans WHERE chain = $1 AND id = $2
	`
	var p models.SubscriptionPlan
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&p.ID, &p.Provider, &p.PlanID, &p.Status,
		&p.TotalSubscriptionCount, &p.ActiveSubscriptionCount,
		&p.TrialingSubscriptionCount, &p.ConvertedSubscriptionCount,
		&p.CanceledSubscriptionCount, &p.PausedSubscriptionCount,
		&p.PastDueSubscriptionCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) PutPlan(ctx context.Context, p *models.SubscriptionPlan) error {
	query := `
		INSERT INTO cask_subscription_plans (chain, id, provider, plan_id, status,
			total_subscription_count, active_subscription_count,
			trialing_subscription_count, converted_subscription_count,
			canceled_subscription_count, paused_subscription_count,
			past_due_subscription_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (chain, id) DO UPDATE SET
			status = EXCLUDED.status,
			total_subscription_count = EXCLUDED.total_subscription_count,
			active_subscription_count = EXCLUDED.active_subscription_count,
			trialing_subscription_count = EXCLUDED.trialing_subscription_count,
			converted_subscription_count = EXCLUDED.converted_subscription_count,
			canceled_subscription_count = EXCLUDED.canceled_subscription_count,
			paused_subscription_count = EXCLUDED.paused_subscription_count,
			past_due_subscription_count = EXCLUDED.past_due_subscription_count
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, p.ID, p.Provider, p.PlanID, p.Status,
		p.TotalSubscriptionCount, p.ActiveSubscriptionCount,
		p.TrialingSubscriptionCount, p.ConvertedSubscriptionCount,
		p.CanceledSubscriptionCount, p.PausedSubscriptionCount,
		p.PastDueSubscriptionCount)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	query := `
		SELECT id, status, current_owner, provider, plan, ref, plan_data, price,
		       period, free_trial, max_active, min_periods, grace_period,
		       can_pause, can_transfer, discount_data, discount_id, cid,
		       created_at, renew_at, cancel_at, paused_at, canceled_at,
		       past_due_at, last_renewed_at, renew_count, transfer_count
		FROM cask_subscriptions WHERE chain = $1 AND id = $2
	`
	var sub models.Subscription
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&sub.ID, &sub.Status, &sub.CurrentOwner, &sub.Provider, &sub.Plan, &sub.Ref,
		&sub.PlanData, &sub.Price, &sub.Period, &sub.FreeTrial, &sub.MaxActive,
		&sub.MinPeriods, &sub.GracePeriod, &sub.CanPause, &sub.CanTransfer,
		&sub.DiscountData, &sub.DiscountID, &sub.CID,
		&sub.CreatedAt, &sub.RenewAt, &sub.CancelAt, &sub.PausedAt, &sub.CanceledAt,
		&sub.PastDueAt, &sub.LastRenewedAt, &sub.RenewCount, &sub.TransferCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription %s: %w", id, err)
	}
	return &sub, nil
}

func (s *PostgresStore) PutSubscription(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO cask_subscriptions (chain, id, status, current_owner, provider,
			plan, ref, plan_data, price, period, free_trial, max_active, min_periods,
			grace_period, can_pause, can_transfer, discount_data, discount_id, cid,
			created_at, renew_at, cancel_at, paused_at, canceled_at, past_due_at,
			last_renewed_at, renew_count, transfer_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		ON CONFLICT (chain, id) DO UPDATE SET
			status = EXCLUDED.status,
			current_owner = EXCLUDED.current_owner,
			provider = EXCLUDED.provider,
			plan = EXCLUDED.plan,
			ref = EXCLUDED.ref,
			plan_data = EXCLUDED.plan_data,
			price = EXCLUDED.price,
			period = EXCLUDED.period,
			free_trial = EXCLUDED.free_trial,
			max_active = EXCLUDED.max_active,
			min_periods = EXCLUDED.min_periods,
			grace_period = EXCLUDED.grace_period,
			can_pause = EXCLUDED.can_pause,
			can_transfer = EXCLUDED.can_transfer,
			discount_data = EXCLUDED.discount_data,
			discount_id = EXCLUDED.discount_id,
			cid = EXCLUDED.cid,
			created_at = EXCLUDED.created_at,
			renew_at = EXCLUDED.renew_at,
			cancel_at = EXCLUDED.cancel_at,
			paused_at = EXCLUDED.paused_at,
			canceled_at = EXCLUDED.canceled_at,
			past_due_at = EXCLUDED.past_due_at,
			last_renewed_at = EXCLUDED.last_renewed_at,
			renew_count = EXCLUDED.renew_count,
			transfer_count = EXCLUDED.transfer_count
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, sub.ID, sub.Status, sub.CurrentOwner,
		sub.Provider, sub.Plan, sub.Ref, sub.PlanData, sub.Price, sub.Period,
		sub.FreeTrial, sub.MaxActive, sub.MinPeriods, sub.GracePeriod,
		sub.CanPause, sub.CanTransfer, sub.DiscountData, sub.DiscountID, sub.CID,
		sub.CreatedAt, sub.RenewAt, sub.CancelAt, sub.PausedAt, sub.CanceledAt,
		sub.PastDueAt, sub.LastRenewedAt, sub.RenewCount, sub.TransferCount)
	if err != nil {
		return fmt.Errorf("failed to save subscription %s: %w", sub.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetDiscount(ctx context.Context, id string) (*models.Discount, error) {
	query := `SELECT id, provider, discount_id, redemptions FROM cask_discounts WHERE chain = $1 AND id = $2`
	var d models.Discount
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(&d.ID, &d.Provider, &d.DiscountID, &d.Redemptions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load discount %s: %w", id, err)
	}
	return &d, nil
}

func (s *PostgresStore) PutDiscount(ctx context.Context, d *models.Discount) error {
	query := `
		INSERT INTO cask_discounts (chain, id, provider, discount_id, redemptions)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chain, id) DO UPDATE SET redemptions = EXCLUDED.redemptions
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, d.ID, d.Provider, d.DiscountID, d.Redemptions)
	if err != nil {
		return fmt.Errorf("failed to save discount %s: %w", d.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetDCA(ctx context.Context, id string) (*models.DCA, error) {
	query := `
		SELECT id, user_id, to_address, router, price_feed, input_asset, output_asset,
		       amount, total_amount, current_amount, current_fees, current_qty,
		       min_price, max_price, max_slippage_bps, period, num_buys, num_skips,
		       status, created_at, process_at, paused_at, canceled_at, completed_at,
		       last_processed_at, last_skipped_at
		FROM cask_dcas WHERE chain = $1 AND id = $2
	`
	var d models.DCA
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&d.ID, &d.User, &d.To, &d.Router, &d.PriceFeed, &d.InputAsset, &d.OutputAsset,
		&d.Amount, &d.TotalAmount, &d.CurrentAmount, &d.CurrentFees, &d.CurrentQty,
		&d.MinPrice, &d.MaxPrice, &d.MaxSlippageBps, &d.Period, &d.NumBuys, &d.NumSkips,
		&d.Status, &d.CreatedAt, &d.ProcessAt, &d.PausedAt, &d.CanceledAt, &d.CompletedAt,
		&d.LastProcessedAt, &d.LastSkippedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dca %s: %w", id, err)
	}
	return &d, nil
}

func (s *PostgresStore) PutDCA(ctx context.Context, d *models.DCA) error {
	query := `
		INSERT INTO cask_dcas (chain, id, user_id, to_address, router, price_feed,
			input_asset, output_asset, amount, total_amount, current_amount,
			current_fees, current_qty, min_price, max_price, max_slippage_bps,
			period, num_buys, num_skips, status, created_at, process_at, paused_at,
			canceled_at, completed_at, last_processed_at, last_skipped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (chain, id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			to_address = EXCLUDED.to_address,
			router = EXCLUDED.router,
			price_feed = EXCLUDED.price_feed,
			input_asset = EXCLUDED.input_asset,
			output_asset = EXCLUDED.output_asset,
			amount = EXCLUDED.amount,
			total_amount = EXCLUDED.total_amount,
			current_amount = EXCLUDED.current_amount,
			current_fees = EXCLUDED.current_fees,
			current_qty = EXCLUDED.current_qty,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			max_slippage_bps = EXCLUDED.max_slippage_bps,
			period = EXCLUDED.period,
			num_buys = EXCLUDED.num_buys,
			num_skips = EXCLUDED.num_skips,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			process_at = EXCLUDED.process_at,
			paused_at = EXCLUDED.paused_at,
			canceled_at = EXCLUDED.canceled_at,
			completed_at = EXCLUDED.completed_at,
			last_processed_at = EXCLUDED.last_processed_at,
			last_skipped_at = EXCLUDED.last_skipped_at
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, d.ID, d.User, d.To, d.Router,
		d.PriceFeed, d.InputAsset, d.OutputAsset, d.Amount, d.TotalAmount,
		d.CurrentAmount, d.CurrentFees, d.CurrentQty, d.MinPrice, d.MaxPrice,
		d.MaxSlippageBps, d.Period, d.NumBuys, d.NumSkips, d.Status,
		d.CreatedAt, d.ProcessAt, d.PausedAt, d.CanceledAt, d.CompletedAt,
		d.LastProcessedAt, d.LastSkippedAt)
	if err != nil {
		return fmt.Errorf("failed to save dca %s: %w", d.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetP2P(ctx context.Context, id string) (*models.P2P, error) {
	query := `
		SELECT id, user_id, to_address, amount, total_amount, current_amount,
		       period, num_payments, num_skips, status, created_at, process_at
		FROM cask_p2ps WHERE chain = $1 AND id = $2
	`
	var p models.P2P
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&p.ID, &p.User, &p.To, &p.Amount, &p.TotalAmount, &p.CurrentAmount,
		&p.Period, &p.NumPayments, &p.NumSkips, &p.Status, &p.CreatedAt, &p.ProcessAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load p2p %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) PutP2P(ctx context.Context, p *models.P2P) error {
	query := `
		INSERT INTO cask_p2ps (chain, id, user_id, to_address, amount, total_amount,
			current_amount, period, num_payments, num_skips, status, created_at, process_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (chain, id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			to_address = EXCLUDED.to_address,
			amount = EXCLUDED.amount,
			total_amount = EXCLUDED.total_amount,
			current_amount = EXCLUDED.current_amount,
			period = EXCLUDED.period,
			num_payments = EXCLUDED.num_payments,
			num_skips = EXCLUDED.num_skips,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			process_at = EXCLUDED.process_at
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, p.ID, p.User, p.To, p.Amount,
		p.TotalAmount, p.CurrentAmount, p.Period, p.NumPayments, p.NumSkips,
		p.Status, p.CreatedAt, p.ProcessAt)
	if err != nil {
		return fmt.Errorf("failed to save p2p %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetChainlinkTopup(ctx context.Context, id string) (*models.ChainlinkTopup, error) {
	query := `
		SELECT id, user_id, low_balance, topup_amount, registry, target_id,
		       topup_type, current_amount, current_buy_qty, current_fees,
		       num_topups, num_skips, status, created_at, paused_at, canceled_at,
		       last_processed_at, last_skipped_at
		FROM cask_chainlink_topups WHERE chain = $1 AND id = $2
	`
	var t models.ChainlinkTopup
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(
		&t.ID, &t.User, &t.LowBalance, &t.TopupAmount, &t.Registry, &t.TargetID,
		&t.TopupType, &t.CurrentAmount, &t.CurrentBuyQty, &t.CurrentFees,
		&t.NumTopups, &t.NumSkips, &t.Status, &t.CreatedAt, &t.PausedAt, &t.CanceledAt,
		&t.LastProcessedAt, &t.LastSkippedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chainlink topup %s: %w", id, err)
	}
	return &t, nil
}

func (s *PostgresStore) PutChainlinkTopup(ctx context.Context, t *models.ChainlinkTopup) error {
	query := `
		INSERT INTO cask_chainlink_topups (chain, id, user_id, low_balance,
			topup_amount, registry, target_id, topup_type, current_amount,
			current_buy_qty, current_fees, num_topups, num_skips, status,
			created_at, paused_at, canceled_at, last_processed_at, last_skipped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19)
		ON CONFLICT (chain, id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			low_balance = EXCLUDED.low_balance,
			topup_amount = EXCLUDED.topup_amount,
			registry = EXCLUDED.registry,
			target_id = EXCLUDED.target_id,
			topup_type = EXCLUDED.topup_type,
			current_amount = EXCLUDED.current_amount,
			current_buy_qty = EXCLUDED.current_buy_qty,
			current_fees = EXCLUDED.current_fees,
			num_topups = EXCLUDED.num_topups,
			num_skips = EXCLUDED.num_skips,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			paused_at = EXCLUDED.paused_at,
			canceled_at = EXCLUDED.canceled_at,
			last_processed_at = EXCLUDED.last_processed_at,
			last_skipped_at = EXCLUDED.last_skipped_at
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, t.ID, t.User, t.LowBalance,
		t.TopupAmount, t.Registry, t.TargetID, t.TopupType, t.CurrentAmount,
		t.CurrentBuyQty, t.CurrentFees, t.NumTopups, t.NumSkips, t.Status,
		t.CreatedAt, t.PausedAt, t.CanceledAt, t.LastProcessedAt, t.LastSkippedAt)
	if err != nil {
		return fmt.Errorf("failed to save chainlink topup %s: %w", t.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetCask(ctx context.Context) (*models.Cask, error) {
	query := `
		SELECT id, total_deposit_count, total_deposit_amount, total_withdraw_count,
		       total_withdraw_amount, total_protocol_payments, total_protocol_fees,
		       total_network_fees
		FROM cask WHERE chain = $1 AND id = $2
	`
	var c models.Cask
	err := s.db.Pool().QueryRow(ctx, query, s.chain, models.CaskID).Scan(
		&c.ID, &c.TotalDepositCount, &c.TotalDepositAmount, &c.TotalWithdrawCount,
		&c.TotalWithdrawAmount, &c.TotalProtocolPayments, &c.TotalProtocolFees,
		&c.TotalNetworkFees,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cask totals: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) PutCask(ctx context.Context, c *models.Cask) error {
	query := `
		INSERT INTO cask (chain, id, total_deposit_count, total_deposit_amount,
			total_withdraw_count, total_withdraw_amount, total_protocol_payments,
			total_protocol_fees, total_network_fees)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (chain, id) DO UPDATE SET
			total_deposit_count = EXCLUDED.total_deposit_count,
			total_deposit_amount = EXCLUDED.total_deposit_amount,
			total_withdraw_count = EXCLUDED.total_withdraw_count,
			total_withdraw_amount = EXCLUDED.total_withdraw_amount,
			total_protocol_payments = EXCLUDED.total_protocol_payments,
			total_protocol_fees = EXCLUDED.total_protocol_fees,
			total_network_fees = EXCLUDED.total_network_fees
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, c.ID, c.TotalDepositCount,
		c.TotalDepositAmount, c.TotalWithdrawCount, c.TotalWithdrawAmount,
		c.TotalProtocolPayments, c.TotalProtocolFees, c.TotalNetworkFees)
	if err != nil {
		return fmt.Errorf("failed to save cask totals: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMetric(ctx context.Context, id string) (*models.Metric, error) {
	query := `SELECT id, name, date, value FROM cask_metrics WHERE chain = $1 AND id = $2`
	var m models.Metric
	err := s.db.Pool().QueryRow(ctx, query, s.chain, id).Scan(&m.ID, &m.Name, &m.Date, &m.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metric %s: %w", id, err)
	}
	return &m, nil
}

func (s *PostgresStore) PutMetric(ctx context.Context, m *models.Metric) error {
	query := `
		INSERT INTO cask_metrics (chain, id, name, date, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chain, id) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, m.ID, m.Name, m.Date, m.Value)
	if err != nil {
		return fmt.Errorf("failed to save metric %s: %w", m.ID, err)
	}
	return nil
}

func (s *PostgresStore) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO cask_transactions (chain, id, type, timestamp, consumer,
			provider, asset_address, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (chain, id) DO UPDATE SET
			type = EXCLUDED.type,
			timestamp = EXCLUDED.timestamp,
			consumer = EXCLUDED.consumer,
			provider = EXCLUDED.provider,
			asset_address = EXCLUDED.asset_address,
			amount = EXCLUDED.amount
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, txn.ID, txn.Type, txn.Timestamp,
		txn.Consumer, txn.Provider, txn.AssetAddress, txn.Amount)
	if err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (s *PostgresStore) AppendSubscriptionEvent(ctx context.Context, ev *models.SubscriptionEvent) error {
	query := `
		INSERT INTO cask_subscription_events (chain, id, type, txn_id, timestamp,
			consumer, provider, subscription_id, plan_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (chain, id) DO UPDATE SET
			type = EXCLUDED.type,
			txn_id = EXCLUDED.txn_id,
			timestamp = EXCLUDED.timestamp,
			consumer = EXCLUDED.consumer,
			provider = EXCLUDED.provider,
			subscription_id = EXCLUDED.subscription_id,
			plan_id = EXCLUDED.plan_id
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, ev.ID, ev.Type, ev.TxnID,
		ev.Timestamp, ev.Consumer, ev.Provider, ev.SubscriptionID, ev.PlanID)
	if err != nil {
		return fmt.Errorf("failed to append subscription event %s: %w", ev.ID, err)
	}
	return nil
}

func (s *PostgresStore) AppendDCAEvent(ctx context.Context, ev *models.DCAEvent) error {
	query := `
		INSERT INTO cask_dca_events (chain, id, type, dca_id, txn_id, timestamp,
			user_id, asset_address, amount, buy_qty, fee, skip_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (chain, id) DO UPDATE SET
			type = EXCLUDED.type,
			dca_id = EXCLUDED.dca_id,
			txn_id = EXCLUDED.txn_id,
			timestamp = EXCLUDED.timestamp,
			user_id = EXCLUDED.user_id,
			asset_address = EXCLUDED.asset_address,
			amount = EXCLUDED.amount,
			buy_qty = EXCLUDED.buy_qty,
			fee = EXCLUDED.fee,
			skip_reason = EXCLUDED.skip_reason
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, ev.ID, ev.Type, ev.DCAID,
		ev.TxnID, ev.Timestamp, ev.User, ev.AssetAddress, ev.Amount, ev.BuyQty,
		ev.Fee, ev.SkipReason)
	if err != nil {
		return fmt.Errorf("failed to append dca event %s: %w", ev.ID, err)
	}
	return nil
}

func (s *PostgresStore) AppendChainlinkTopupEvent(ctx context.Context, ev *models.ChainlinkTopupEvent) error {
	query := `
		INSERT INTO cask_chainlink_topup_events (chain, id, type, topup_id,
			target_id, registry, topup_type, txn_id, timestamp, user_id, amount,
			buy_qty, fee, skip_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (chain, id) DO UPDATE SET
			type = EXCLUDED.type,
			topup_id = EXCLUDED.topup_id,
			target_id = EXCLUDED.target_id,
			registry = EXCLUDED.registry,
			topup_type = EXCLUDED.topup_type,
			txn_id = EXCLUDED.txn_id,
			timestamp = EXCLUDED.timestamp,
			user_id = EXCLUDED.user_id,
			amount = EXCLUDED.amount,
			buy_qty = EXCLUDED.buy_qty,
			fee = EXCLUDED.fee,
			skip_reason = EXCLUDED.skip_reason
	`
	_, err := s.db.Pool().Exec(ctx, query, s.chain, ev.ID, ev.Type, ev.TopupID,
		ev.TargetID, ev.Registry, ev.TopupType, ev.TxnID, ev.Timestamp, ev.User,
		ev.Amount, ev.BuyQty, ev.Fee, ev.SkipReason)
	if err != nil {
		return fmt.Errorf("failed to append chainlink topup event %s: %w", ev.ID, err)
	}
	return nil
}
