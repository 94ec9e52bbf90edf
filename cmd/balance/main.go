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

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account ID (required)")
	flag.Parse()

	if *accountFlag == "" {
		logger.Fatal("Flag is required: --account")
	}

	logger.Info("Starting balance query", zap.String("account_id", *accountFlag))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.Ledger.GetBalance(ctx, models.GetBalanceCommand{
		AccountId: *accountFlag,
	})
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			common.PrintHeader("BALANCE QUERY FAILED", common.DefaultWidth)
			fmt.Printf("Error: Account not found: %s\n", *accountFlag)
			common.PrintSeparator("=", common.DefaultWidth)
			logger.Fatal("Account not found", zap.String("account_id", *accountFlag))
		}
		logger.Fatal("Failed to get balance", zap.Error(err))
	}

	account, err := services.Store.GetAccount(ctx, *accountFlag)
	if err != nil {
		logger.Fatal("Failed to load account details", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("ACCOUNT BALANCE", common.DefaultWidth)
	fmt.Printf("Account:  %s\n", result.AccountId)
	fmt.Printf("Owner:    %s\n", account.OwnerName)
	fmt.Printf("Status:   %s\n", account.Status)
	fmt.Printf("Balance:  %s %s\n", result.Balance.String(), account.Currency)
	fmt.Printf("As Of:    %s\n", result.AsOf.Format("2006-01-02 15:04:05"))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	logger.Info("Balance query completed",
		zap.String("account_id", result.AccountId),
		zap.String("balance", result.Balance.String()))
}
