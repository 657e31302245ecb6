package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdv-commerce/storefront/internal/chat"
	"github.com/pdv-commerce/storefront/pkg/money"
)

var chatWatch bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to sellers",
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE:  runChatList,
}

var chatNewCmd = &cobra.Command{
	Use:   "new <seller-id>",
	Short: "Start a conversation with a seller",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatNew,
}

var chatMessagesCmd = &cobra.Command{
	Use:   "messages <conversation-id>",
	Short: "Read a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatMessages,
}

var chatSendCmd = &cobra.Command{
	Use:   "send <conversation-id> <message...>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChatSend,
}

var chatUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show the unread message count",
	Args:  cobra.NoArgs,
	RunE:  runChatUnread,
}

func init() {
	chatUnreadCmd.Flags().BoolVar(&chatWatch, "watch", false, "Keep polling until interrupted")
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatNewCmd)
	chatCmd.AddCommand(chatMessagesCmd)
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatUnreadCmd)
}

func runChatList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	conversations, err := a.chat.Conversations(ctx)
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSELLER\tUNREAD\tLAST MESSAGE\tUPDATED")
	for _, c := range conversations {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			c.ID, c.SellerName, c.UnreadCount, c.LastMessage, money.FormatDateTime(c.UpdatedAt))
	}
	return w.Flush()
}

func runChatNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	sellerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid seller id %q", args[0])
	}

	conversation, err := a.chat.CreateConversation(ctx, sellerID)
	if err != nil {
		return err
	}
	fmt.Printf("Conversation #%d with %s\n", conversation.ID, conversation.SellerName)
	return nil
}

func runChatMessages(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	conversationID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", args[0])
	}

	messages, err := a.chat.Messages(ctx, conversationID)
	if err != nil {
		return err
	}

	for _, m := range messages {
		fmt.Printf("[%s] %s: %s\n", money.FormatDateTime(m.SentAt), m.SenderName, m.Body)
	}
	return a.chat.MarkRead(ctx, conversationID)
}

func runChatSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	conversationID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", args[0])
	}

	message, err := a.chat.Send(ctx, conversationID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("Sent message #%d\n", message.ID)
	return nil
}

func runChatUnread(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	if !chatWatch {
		count, err := a.chat.UnreadCount(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d unread message(s)\n", count)
		return nil
	}

	poller := chat.StartUnreadPoller(ctx, a.chat, a.logg, a.cfg.Chat.UnreadPollInterval, func(count int) {
		fmt.Printf("%d unread message(s)\n", count)
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	poller.Stop()
	return nil
}
