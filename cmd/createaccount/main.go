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

type createAccountRequest struct {
	ownerName      string
	currency       string
	initialDeposit decimal.Decimal
}

func parseAndValidateFlags() (*createAccountRequest, error) {
	ownerFlag := flag.String("owner", "", "Account owner's full name (required)")
	currencyFlag := flag.String("currency", "PLN", "Account currency code")
	initialFlag := flag.String("initial", "0", "Initial deposit amount (optional)")
	flag.Parse()

	if *ownerFlag == "" {
		return nil, fmt.Errorf("flag is required: --owner")
	}

	initial, err := decimal.NewFromString(*initialFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid initial deposit format: %w", err)
	}

	return &createAccountRequest{
		ownerName:      *ownerFlag,
		currency:       *currencyFlag,
		initialDeposit: initial,
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

	zap.L().Info("Starting account creation",
		zap.String("owner", req.ownerName),
		zap.String("currency", req.currency),
		zap.String("initial_deposit", req.initialDeposit.String()))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.Ledger.CreateAccount(ctx, models.CreateAccountCommand{
		OwnerName:      req.ownerName,
		Currency:       models.Currency(req.currency),
		InitialDeposit: req.initialDeposit,
	})
	if err != nil {
		common.PrintHeader("ACCOUNT CREATION FAILED", common.DefaultWidth)
		fmt.Printf("Error: %s\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		if errors.Is(err, store.ErrInvalidRequest) {
			zap.L().Fatal("Invalid account request", zap.Error(err))
		}
		zap.L().Fatal("Failed to create account", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("ACCOUNT CREATED", common.DefaultWidth)
	fmt.Printf("ID:              %s\n", result.AccountId)
	fmt.Printf("Owner:           %s\n", result.OwnerName)
	fmt.Printf("Currency:        %s\n", result.Currency)
	fmt.Printf("Status:          %s\n", result.Status)
	fmt.Printf("Initial Balance: %s %s\n", result.InitialBalance.String(), result.Currency)
	fmt.Printf("Created At:      %s\n", result.CreatedAt.Format("2006-01-02 15:04:05"))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Account created successfully", zap.String("account_id", result.AccountId))
}
