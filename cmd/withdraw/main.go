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

	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type withdrawRequest struct {
	accountId string
	amount    decimal.Decimal
	note      string
}

func parseAndValidateFlags() (*withdrawRequest, error) {
	accountFlag := flag.String("account", "", "Account ID (required)")
	amountFlag := flag.String("amount", "", "Amount to withdraw (required)")
	noteFlag := flag.String("note", "", "Optional note attached to the transaction")
	flag.Parse()

	if *accountFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags are required: --account, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &withdrawRequest{
		accountId: *accountFlag,
		amount:    amount,
		note:      *noteFlag,
	}, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting withdrawal",
		zap.String("account_id", req.accountId),
		zap.String("amount", req.amount.String()))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.Ledger.Withdraw(ctx, models.WithdrawCommand{
		AccountId: req.accountId,
		Amount:    req.amount,
		Note:      req.note,
	})
	if err != nil {
		common.PrintHeader("WITHDRAWAL FAILED", common.DefaultWidth)
		fmt.Printf("Account: %s\n", req.accountId)
		fmt.Printf("Amount:  %s\n", req.amount.String())
		fmt.Printf("Error:   %s\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		switch {
		case errors.Is(err, store.ErrInsufficientFunds):
			zap.L().Fatal("Insufficient funds",
				zap.String("account_id", req.accountId),
				zap.String("requested", req.amount.String()))
		case errors.Is(err, store.ErrAccountNotFound):
			zap.L().Fatal("Account not found", zap.String("account_id", req.accountId))
		case errors.Is(err, store.ErrAccountInactive):
			zap.L().Fatal("Account is not active", zap.String("account_id", req.accountId))
		case errors.Is(err, store.ErrConcurrencyConflict):
			zap.L().Fatal("Withdrawal lost the version race - please retry", zap.Error(err))
		default:
			zap.L().Fatal("Failed to withdraw", zap.Error(err))
		}
	}

	fmt.Println()
	common.PrintHeader("WITHDRAWAL COMPLETED", common.DefaultWidth)
	fmt.Printf("Account:        %s\n", result.AccountId)
	fmt.Printf("Transaction ID: %s\n", result.TransactionId)
	fmt.Printf("Amount:         %s\n", req.amount.String())
	fmt.Printf("New Balance:    %s\n", result.NewBalance.String())
	fmt.Printf("Occurred At:    %s\n", result.OccurredAt.Format("2006-01-02 15:04:05"))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Withdrawal completed successfully",
		zap.String("account_id", result.AccountId),
		zap.String("transaction_id", result.TransactionId),
		zap.String("new_balance", result.NewBalance.String()))
}
