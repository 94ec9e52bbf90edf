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
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/store"

	"go.uber.org/zap"
)

type reconcileStats struct {
	checked    int
	mismatched int
	failed     int
}

func reconcileAccount(ctx context.Context, ledgerStore store.LedgerStore, accountId string, stats *reconcileStats) {
	stats.checked++

	err := ledgerStore.ReconcileBalance(ctx, accountId)
	switch {
	case err == nil:
		fmt.Printf("✓ %s: OK\n", accountId)
	case errors.Is(err, store.ErrConstraintViolation):
		stats.mismatched++
		fmt.Printf("✗ %s: MISMATCH (%s)\n", accountId, err)
	default:
		stats.failed++
		zap.L().Error("Failed to reconcile account",
			zap.String("account_id", accountId),
			zap.Error(err))
		fmt.Printf("✗ %s: ERROR (%s)\n", accountId, err)
	}
}

func runReconciliation(ctx context.Context, ledgerStore store.LedgerStore, accountId string) (reconcileStats, error) {
	stats := reconcileStats{}

	if accountId != "" {
		reconcileAccount(ctx, ledgerStore, accountId, &stats)
		return stats, nil
	}

	accounts, err := ledgerStore.ListAccounts(ctx, 0)
	if err != nil {
		return stats, fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, account := range accounts {
		reconcileAccount(ctx, ledgerStore, account.Id, &stats)
	}
	return stats, nil
}

func printStats(stats reconcileStats) {
	summary := fmt.Sprintf("SUMMARY: %d checked, %d mismatched, %d errors",
		stats.checked, stats.mismatched, stats.failed)
	common.PrintFooter(summary, common.DefaultWidth)

	zap.L().Info("Reconciliation pass completed",
		zap.Int("checked", stats.checked),
		zap.Int("mismatched", stats.mismatched),
		zap.Int("errors", stats.failed))
}

func main() {
	accountFlag := flag.String("account", "", "Reconcile a single account (default: all accounts)")
	watchFlag := flag.Bool("watch", false, "Keep running and reconcile on an interval")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	common.PrintHeader("BALANCE RECONCILIATION", common.DefaultWidth)

	stats, err := runReconciliation(ctx, services.Store, *accountFlag)
	if err != nil {
		zap.L().Fatal("Reconciliation failed", zap.Error(err))
	}
	printStats(stats)

	if !*watchFlag {
		if stats.mismatched > 0 || stats.failed > 0 {
			os.Exit(1)
		}
		return
	}

	zap.L().Info("Watching for balance drift",
		zap.Duration("interval", cfg.Ledger.ReconcileInterval))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Ledger.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			common.PrintHeader("BALANCE RECONCILIATION", common.DefaultWidth)
			stats, err := runReconciliation(ctx, services.Store, *accountFlag)
			if err != nil {
				zap.L().Error("Reconciliation pass failed", zap.Error(err))
				continue
			}
			printStats(stats)
		case <-sigChan:
			zap.L().Info("Shutdown signal received, stopping reconciliation")
			return
		case <-ctx.Done():
			return
		}
	}
}
