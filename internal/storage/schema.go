package storage

import (
	"context"
	"fmt"
)

// schemaDDL is applied at startup. Every table is keyed (chain, id): one
// database serves all indexed chains, but no state is shared across them.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS cask_users (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	appeared_at BIGINT NOT NULL DEFAULT 0,
	balance NUMERIC NOT NULL DEFAULT 0,
	deposit_count BIGINT NOT NULL DEFAULT 0,
	deposit_amount NUMERIC NOT NULL DEFAULT 0,
	withdraw_count BIGINT NOT NULL DEFAULT 0,
	withdraw_amount NUMERIC NOT NULL DEFAULT 0,
	funding_source TEXT NOT NULL DEFAULT 'None',
	funding_asset TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_consumers (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	appeared_at BIGINT NOT NULL DEFAULT 0,
	balance NUMERIC NOT NULL DEFAULT 0,
	deposit_count BIGINT NOT NULL DEFAULT 0,
	deposit_amount NUMERIC NOT NULL DEFAULT 0,
	withdraw_count BIGINT NOT NULL DEFAULT 0,
	withdraw_amount NUMERIC NOT NULL DEFAULT 0,
	total_subscription_count BIGINT NOT NULL DEFAULT 0,
	active_subscription_count BIGINT NOT NULL DEFAULT 0,
	total_dca_count BIGINT NOT NULL DEFAULT 0,
	active_dca_count BIGINT NOT NULL DEFAULT 0,
	total_p2p_count BIGINT NOT NULL DEFAULT 0,
	active_p2p_count BIGINT NOT NULL DEFAULT 0,
	total_chainlink_topup_count BIGINT NOT NULL DEFAULT 0,
	active_chainlink_topup_count BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_providers (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	appeared_at BIGINT NOT NULL DEFAULT 0,
	total_payments_received NUMERIC NOT NULL DEFAULT 0,
	total_subscription_count BIGINT NOT NULL DEFAULT 0,
	active_subscription_count BIGINT NOT NULL DEFAULT 0,
	trialing_subscription_count BIGINT NOT NULL DEFAULT 0,
	converted_subscription_count BIGINT NOT NULL DEFAULT 0,
	canceled_subscription_count BIGINT NOT NULL DEFAULT 0,
	paused_subscription_count BIGINT NOT NULL DEFAULT 0,
	past_due_subscription_count BIGINT NOT NULL DEFAULT 0,
	profile_cid TEXT NOT NULL DEFAULT '',
	profile_nonce BIGINT NOT NULL DEFAULT 0,
	payment_address TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_subscription_plans (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	provider TEXT NOT NULL,
	plan_id BIGINT NOT NULL,
	status TEXT NOT NULL,
	total_subscription_count BIGINT NOT NULL DEFAULT 0,
	active_subscription_count BIGINT NOT NULL DEFAULT 0,
	trialing_subscription_count BIGINT NOT NULL DEFAULT 0,
	converted_subscription_count BIGINT NOT NULL DEFAULT 0,
	canceled_subscription_count BIGINT NOT NULL DEFAULT 0,
	paused_subscription_count BIGINT NOT NULL DEFAULT 0,
	past_due_subscription_count BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_subscriptions (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	status TEXT NOT NULL,
	current_owner TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	plan TEXT NOT NULL DEFAULT '',
	ref TEXT NOT NULL DEFAULT '',
	plan_data BYTEA,
	price NUMERIC NOT NULL DEFAULT 0,
	period BIGINT NOT NULL DEFAULT 0,
	free_trial BIGINT NOT NULL DEFAULT 0,
	max_active BIGINT NOT NULL DEFAULT 0,
	min_periods BIGINT NOT NULL DEFAULT 0,
	grace_period SMALLINT NOT NULL DEFAULT 0,
	can_pause BOOLEAN NOT NULL DEFAULT FALSE,
	can_transfer BOOLEAN NOT NULL DEFAULT FALSE,
	discount_data BYTEA,
	discount_id TEXT NOT NULL DEFAULT '',
	cid TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL DEFAULT 0,
	renew_at BIGINT NOT NULL DEFAULT 0,
	cancel_at BIGINT NOT NULL DEFAULT 0,
	paused_at BIGINT NOT NULL DEFAULT 0,
	canceled_at BIGINT NOT NULL DEFAULT 0,
	past_due_at BIGINT NOT NULL DEFAULT 0,
	last_renewed_at BIGINT NOT NULL DEFAULT 0,
	renew_count BIGINT NOT NULL DEFAULT 0,
	transfer_count BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_discounts (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	provider TEXT NOT NULL,
	discount_id TEXT NOT NULL,
	redemptions BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_dcas (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	to_address TEXT NOT NULL DEFAULT '',
	router TEXT NOT NULL DEFAULT '',
	price_feed TEXT NOT NULL DEFAULT '',
	input_asset TEXT NOT NULL DEFAULT '',
	output_asset TEXT NOT NULL DEFAULT '',
	amount NUMERIC NOT NULL DEFAULT 0,
	total_amount NUMERIC NOT NULL DEFAULT 0,
	current_amount NUMERIC NOT NULL DEFAULT 0,
	current_fees NUMERIC NOT NULL DEFAULT 0,
	current_qty NUMERIC NOT NULL DEFAULT 0,
	min_price NUMERIC NOT NULL DEFAULT 0,
	max_price NUMERIC NOT NULL DEFAULT 0,
	max_slippage_bps BIGINT NOT NULL DEFAULT 0,
	period BIGINT NOT NULL DEFAULT 0,
	num_buys BIGINT NOT NULL DEFAULT 0,
	num_skips BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at BIGINT NOT NULL DEFAULT 0,
	process_at BIGINT NOT NULL DEFAULT 0,
	paused_at BIGINT NOT NULL DEFAULT 0,
	canceled_at BIGINT NOT NULL DEFAULT 0,
	completed_at BIGINT NOT NULL DEFAULT 0,
	last_processed_at BIGINT NOT NULL DEFAULT 0,
	last_skipped_at BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_p2ps (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	to_address TEXT NOT NULL DEFAULT '',
	amount NUMERIC NOT NULL DEFAULT 0,
	total_amount NUMERIC NOT NULL DEFAULT 0,
	current_amount NUMERIC NOT NULL DEFAULT 0,
	period BIGINT NOT NULL DEFAULT 0,
	num_payments BIGINT NOT NULL DEFAULT 0,
	num_skips BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at BIGINT NOT NULL DEFAULT 0,
	process_at BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_chainlink_topups (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	low_balance NUMERIC NOT NULL DEFAULT 0,
	topup_amount NUMERIC NOT NULL DEFAULT 0,
	registry TEXT NOT NULL DEFAULT '',
	target_id TEXT NOT NULL DEFAULT '',
	topup_type TEXT NOT NULL,
	current_amount NUMERIC NOT NULL DEFAULT 0,
	current_buy_qty NUMERIC NOT NULL DEFAULT 0,
	current_fees NUMERIC NOT NULL DEFAULT 0,
	num_topups BIGINT NOT NULL DEFAULT 0,
	num_skips BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at BIGINT NOT NULL DEFAULT 0,
	paused_at BIGINT NOT NULL DEFAULT 0,
	canceled_at BIGINT NOT NULL DEFAULT 0,
	last_processed_at BIGINT NOT NULL DEFAULT 0,
	last_skipped_at BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	total_deposit_count BIGINT NOT NULL DEFAULT 0,
	total_deposit_amount NUMERIC NOT NULL DEFAULT 0,
	total_withdraw_count BIGINT NOT NULL DEFAULT 0,
	total_withdraw_amount NUMERIC NOT NULL DEFAULT 0,
	total_protocol_payments NUMERIC NOT NULL DEFAULT 0,
	total_protocol_fees NUMERIC NOT NULL DEFAULT 0,
	total_network_fees NUMERIC NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_metrics (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	name TEXT NOT NULL,
	date BIGINT NOT NULL,
	value NUMERIC NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_transactions (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	type TEXT NOT NULL,
	timestamp BIGINT NOT NULL,
	consumer TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	asset_address TEXT NOT NULL DEFAULT '',
	amount NUMERIC NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_subscription_events (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	type TEXT NOT NULL,
	txn_id TEXT NOT NULL DEFAULT '',
	timestamp BIGINT NOT NULL,
	consumer TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	subscription_id TEXT NOT NULL DEFAULT '',
	plan_id BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_dca_events (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	type TEXT NOT NULL,
	dca_id TEXT NOT NULL DEFAULT '',
	txn_id TEXT NOT NULL DEFAULT '',
	timestamp BIGINT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	asset_address TEXT NOT NULL DEFAULT '',
	amount NUMERIC NOT NULL DEFAULT 0,
	buy_qty NUMERIC NOT NULL DEFAULT 0,
	fee NUMERIC NOT NULL DEFAULT 0,
	skip_reason TEXT NOT NULL DEFAULT 'None',
	PRIMARY KEY (chain, id)
);

CREATE TABLE IF NOT EXISTS cask_chainlink_topup_events (
	chain TEXT NOT NULL,
	id TEXT NOT NULL,
	type TEXT NOT NULL,
	topup_id TEXT NOT NULL DEFAULT '',
	target_id TEXT NOT NULL DEFAULT '',
	registry TEXT NOT NULL DEFAULT '',
	topup_type TEXT NOT NULL DEFAULT 'None',
	txn_id TEXT NOT NULL DEFAULT '',
	timestamp BIGINT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	amount NUMERIC NOT NULL DEFAULT 0,
	buy_qty NUMERIC NOT NULL DEFAULT 0,
	fee NUMERIC NOT NULL DEFAULT 0,
	skip_reason TEXT NOT NULL DEFAULT 'None',
	PRIMARY KEY (chain, id)
);
`

// ApplySchema creates the entity tables if they do not exist.
func (db *PostgresDB) ApplySchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
