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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type historyRequest struct {
	accountId string
	limit     int
	dateFrom  *time.Time
	dateTo    *time.Time
	types     []models.TransactionType
}

func parseAndValidateFlags() (*historyRequest, error) {
	accountFlag := flag.String("account", "", "Account ID (required)")
	limitFlag := flag.Int("limit", 0, "Maximum number of transactions (defaults to DEFAULT_TX_LIMIT)")
	fromFlag := flag.String("from", "", "Include transactions on or after this date (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "Include transactions on or before this date (YYYY-MM-DD)")
	typesFlag := flag.String("types", "", "Comma-separated transaction types (DEPOSIT,WITHDRAW,TRANSFER_IN,TRANSFER_OUT)")
	flag.Parse()

	if *accountFlag == "" {
		return nil, fmt.Errorf("flag is required: --account")
	}

	req := &historyRequest{
		accountId: *accountFlag,
		limit:     *limitFlag,
	}

	if *fromFlag != "" {
		from, err := time.Parse(dateLayout, *fromFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date: %w", err)
		}
		req.dateFrom = &from
	}

	if *toFlag != "" {
		to, err := time.Parse(dateLayout, *toFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date: %w", err)
		}
		// End-of-day so the whole date is included.
		to = to.Add(24*time.Hour - time.Nanosecond)
		req.dateTo = &to
	}

	if *typesFlag != "" {
		for _, part := range strings.Split(*typesFlag, ",") {
			req.types = append(req.types, models.TransactionType(strings.TrimSpace(part)))
		}
	}

	return req, nil
}

func formatRelatedAccount(relatedAccountId string) string {
	if relatedAccountId == "" {
		return ""
	}
	if len(relatedAccountId) > 8 {
		return " ↔ " + relatedAccountId[:8] + "..."
	}
	return " ↔ " + relatedAccountId
}

func printTransaction(item models.TransactionItem, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s %-13s %15s  %s%s\n",
		symbol,
		item.Type,
		item.Amount.String(),
		item.OccurredAt.Format("2006-01-02 15:04:05"),
		formatRelatedAccount(item.RelatedAccountId))

	if item.Note != "" {
		fmt.Printf("%s   note: %s\n", common.BoxDetailPrefix(isLast), item.Note)
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		logger.Fatal("Invalid flags", zap.Error(err))
	}

	logger.Info("Starting transaction history query",
		zap.String("account_id", req.accountId),
		zap.Int("limit", req.limit))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if req.limit == 0 {
		req.limit = cfg.Ledger.DefaultTxLimit
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.Ledger.ListTransactions(ctx, models.ListTransactionsCommand{
		AccountId: req.accountId,
		Limit:     req.limit,
		DateFrom:  req.dateFrom,
		DateTo:    req.dateTo,
		Types:     req.types,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountNotFound):
			common.PrintHeader("TRANSACTION HISTORY FAILED", common.DefaultWidth)
			fmt.Printf("Error: Account not found: %s\n", req.accountId)
			common.PrintSeparator("=", common.DefaultWidth)
			logger.Fatal("Account not found", zap.String("account_id", req.accountId))
		case errors.Is(err, store.ErrInvalidRequest):
			logger.Fatal("Invalid history request", zap.Error(err))
		default:
			logger.Fatal("Failed to list transactions", zap.Error(err))
		}
	}

	common.PrintHeader("TRANSACTION HISTORY", common.DefaultWidth)
	fmt.Printf("Account: %s\n", result.AccountId)
	fmt.Printf("Showing: %d transaction(s), newest first\n", len(result.Items))
	common.PrintBoxSeparator(78)

	for i, item := range result.Items {
		printTransaction(item, i == len(result.Items)-1)
	}

	if len(result.Items) == 0 {
		fmt.Println("└  (no transactions)")
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d transaction(s)", len(result.Items)), common.DefaultWidth)

	logger.Info("Transaction history completed",
		zap.String("account_id", result.AccountId),
		zap.Int("count", len(result.Items)))
}
