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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is published after a movement has been committed.
// Transfers publish one event per leg, correlated by TransferId.
type TransactionCompleted struct {
	TransactionId    string          `json:"transaction_id"`
	TransferId       string          `json:"transfer_id,omitempty"`
	AccountId        string          `json:"account_id"`
	RelatedAccountId string          `json:"related_account_id,omitempty"`
	Type             TransactionType `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         Currency        `json:"currency"`
	OccurredAt       time.Time       `json:"occurred_at"`
}
