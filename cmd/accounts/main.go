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
	"flag"
	"fmt"

	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/models"

	"go.uber.org/zap"
)

func printAccount(account models.Account, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s %-36s %-20s %3s %12s  %s (v%d)\n",
		symbol,
		account.Id,
		account.OwnerName,
		account.Currency,
		account.Balance.String(),
		account.Status,
		account.Version)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	limitFlag := flag.Int("limit", 0, "Maximum number of accounts (0 = all)")
	flag.Parse()

	logger.Info("Starting account listing")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	accounts, err := services.Store.ListAccounts(ctx, *limitFlag)
	if err != nil {
		logger.Fatal("Failed to list accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNTS", common.WideWidth)
	for i, account := range accounts {
		printAccount(account, i == len(accounts)-1)
	}
	if len(accounts) == 0 {
		fmt.Println("└  (no accounts)")
	}
	common.PrintFooter(fmt.Sprintf("SUMMARY: %d account(s)", len(accounts)), common.WideWidth)

	logger.Info("Account listing completed", zap.Int("count", len(accounts)))
}
