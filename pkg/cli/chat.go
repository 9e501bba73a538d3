package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/abcbank/voxteller/pkg/agent"
	"github.com/abcbank/voxteller/pkg/agent/tool/banking"
	"github.com/abcbank/voxteller/pkg/cli/config"
	"github.com/abcbank/voxteller/pkg/service/dataset"
	"github.com/abcbank/voxteller/pkg/usecase"
	"github.com/abcbank/voxteller/pkg/utils/logging"
)

func cmdChat() *cli.Command {
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var agentCfg config.Agent

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, agentCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Interactive text conversation on the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure model client")
			}

			if seed, err := agentCfg.Load(); err != nil {
				return goerr.Wrap(err, "failed to load agent config seed")
			} else if seed != nil {
				if err := repo.Config().Put(ctx, seed); err != nil {
					return goerr.Wrap(err, "failed to store agent config seed")
				}
			}

			registry := agent.NewRegistry(banking.New(dataset.NewSeeded())...)
			engine := agent.New(llmClient, registry)
			uc := usecase.New(repo, engine, usecase.WithEnvKey(agentCfg.EnvKey()))

			session, err := uc.StartSession(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to start session")
			}

			prompt := color.New(color.FgCyan, color.Bold).SprintFunc()
			answer := color.New(color.FgGreen).SprintFunc()
			meta := color.New(color.FgHiBlack).SprintFunc()

			fmt.Printf("%s %s\n", meta("session:"), session.ID)
			fmt.Println(meta("Type your message. 'exit' or Ctrl-D ends the call."))

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Printf("%s ", prompt("you>"))
				if !scanner.Scan() {
					break
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					break
				}

				turn, err := uc.ChatTurn(ctx, session.ID, text)
				if err != nil {
					fmt.Printf("%s %v\n", meta("error:"), err)
					continue
				}

				for _, call := range turn.ToolCalls {
					fmt.Printf("%s %s\n", meta("tool:"), meta(call.Name))
				}
				fmt.Printf("%s %s\n", answer("bank>"), turn.Response)
			}
			if err := scanner.Err(); err != nil {
				return goerr.Wrap(err, "failed to read input")
			}

			if _, err := uc.EndSession(ctx, session.ID); err != nil {
				return goerr.Wrap(err, "failed to end session")
			}
			fmt.Println(meta("call ended"))
			return nil
		},
	}
}
