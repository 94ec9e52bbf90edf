/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package postgres

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, owner_name, currency, balance, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryGetAccount = `
		SELECT id, owner_name, currency, balance, status, version, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	queryListAccounts = `
		SELECT id, owner_name, currency, balance, status, version, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC`

	queryAccountExists = `
		SELECT 1 FROM accounts WHERE id = $1`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, account_id, type, amount, currency, created_at, related_account_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	// NUMERIC(18,2) sums exactly, so the signed sum stays in SQL here.
	querySumTransactions = `
		SELECT COALESCE(SUM(CASE WHEN type IN ('DEPOSIT', 'TRANSFER_IN') THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE account_id = $1`

	queryListTransactionsBase = `
		SELECT id, account_id, type, amount, currency, created_at, related_account_id, note
		FROM transactions
		WHERE account_id = $1`
)
