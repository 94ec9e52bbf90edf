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

package database

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, owner_name, currency, balance, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAccount = `
		SELECT id, owner_name, currency, balance, status, version, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryListAccounts = `
		SELECT id, owner_name, currency, balance, status, version, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC, rowid DESC`

	queryAccountExists = `
		SELECT 1 FROM accounts WHERE id = ?`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, account_id, type, amount, currency, created_at, related_account_id, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// Amounts are summed in Go over exact decimals; SQLite's NUMERIC
	// affinity would coerce the TEXT amounts to floating point.
	querySumTransactions = `
		SELECT type, amount
		FROM transactions
		WHERE account_id = ?`

	queryListTransactionsBase = `
		SELECT id, account_id, type, amount, currency, created_at, related_account_id, note
		FROM transactions
		WHERE account_id = ?`
)
