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

type transferRequest struct {
	fromAccountId string
	toAccountId   string
	amount        decimal.Decimal
	note          string
}

func parseAndValidateFlags() (*transferRequest, error) {
	fromFlag := flag.String("from", "", "Source account ID (required)")
	toFlag := flag.String("to", "", "Destination account ID (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	noteFlag := flag.String("note", "", "Optional note attached to both legs")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags are required: --from, --to, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &transferRequest{
		fromAccountId: *fromFlag,
		toAccountId:   *toFlag,
		amount:        amount,
		note:          *noteFlag,
	}, nil
}

func printTransferFailure(req *transferRequest, err error) {
	common.PrintHeader("TRANSFER FAILED", common.DefaultWidth)
	fmt.Printf("From:   %s\n", req.fromAccountId)
	fmt.Printf("To:     %s\n", req.toAccountId)
	fmt.Printf("Amount: %s\n", req.amount.String())
	fmt.Printf("Error:  %s\n", err)
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting transfer",
		zap.String("from_account_id", req.fromAccountId),
		zap.String("to_account_id", req.toAccountId),
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

	result, err := services.Ledger.Transfer(ctx, models.TransferCommand{
		FromAccountId: req.fromAccountId,
		ToAccountId:   req.toAccountId,
		Amount:        req.amount,
		Note:          req.note,
	})
	if err != nil {
		printTransferFailure(req, err)
		switch {
		case errors.Is(err, store.ErrSameAccountTransfer):
			zap.L().Fatal("Source and destination accounts must differ")
		case errors.Is(err, store.ErrCurrencyMismatch):
			zap.L().Fatal("Accounts hold different currencies", zap.Error(err))
		case errors.Is(err, store.ErrInsufficientFunds):
			zap.L().Fatal("Insufficient funds in source account",
				zap.String("from_account_id", req.fromAccountId),
				zap.String("requested", req.amount.String()))
		case errors.Is(err, store.ErrConcurrencyConflict):
			zap.L().Fatal("Transfer lost the version race - please retry", zap.Error(err))
		default:
			zap.L().Fatal("Failed to transfer", zap.Error(err))
		}
	}

	fmt.Println()
	common.PrintHeader("TRANSFER COMPLETED", common.DefaultWidth)
	fmt.Printf("Transfer ID:         %s\n", result.TransferId)
	fmt.Printf("From:                %s\n", result.FromAccountId)
	fmt.Printf("To:                  %s\n", result.ToAccountId)
	fmt.Printf("Amount:              %s\n", req.amount.String())
	fmt.Printf("Debit Transaction:   %s\n", result.DebitTxId)
	fmt.Printf("Credit Transaction:  %s\n", result.CreditTxId)
	fmt.Printf("Source Balance:      %s\n", result.FromNewBalance.String())
	fmt.Printf("Destination Balance: %s\n", result.ToNewBalance.String())
	fmt.Printf("Occurred At:         %s\n", result.OccurredAt.Format("2006-01-02 15:04:05"))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Transfer completed successfully",
		zap.String("transfer_id", result.TransferId),
		zap.String("from_account_id", result.FromAccountId),
		zap.String("to_account_id", result.ToAccountId),
		zap.String("amount", req.amount.String()))
}
