package main

import (
	"fmt"
	"strings"

	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <transaction-id> <question...>",
		Short: "Ask the agent a question about a transaction",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := createAgentClient()
			if err != nil {
				return err
			}
			defer client.Close()

			txn, err := loadTransaction(ctx, store, args[0])
			if err != nil {
				return err
			}

			question := strings.Join(args[1:], " ")
			answer := client.AskQuestion(ctx, *txn, question)
			fmt.Println(answer)

			meta := map[string]string{"question": question, "answer": answer}
			return recordAgentAction(ctx, store, txn.ID, model.RoleAuditor,
				"QUESTION ANSWERED", question, meta)
		},
	}
}
