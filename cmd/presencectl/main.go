package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/statussync/presence-relay/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	addr := os.Getenv("PRESENCE_RELAY_ADDR")
	if addr == "" {
		addr = "http://localhost:5000"
	}
	client := sdk.New(addr)

	command := strings.ToLower(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "update":
		if len(args) < 2 {
			log.Fatal("Usage: presencectl update <identity> <state> [device]")
		}
		device := ""
		if len(args) > 2 {
			device = args[2]
		}
		if err := client.UpdatePresence(args[0], args[1], device, nil); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "request":
		if len(args) < 2 {
			log.Fatal("Usage: presencectl request <from-identity> <to-identity>")
		}
		id, expiresAt, err := client.CreateRequest(args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(map[string]any{"request_id": id, "expiresAt": expiresAt})

	case "inbox":
		if len(args) < 1 {
			log.Fatal("Usage: presencectl inbox <identity>")
		}
		requests, err := client.RequestInbox(args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(requests)

	case "respond":
		if len(args) < 3 {
			log.Fatal("Usage: presencectl respond <identity> <request-id> allow|deny")
		}
		status, err := client.Respond(args[0], args[1], args[2])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(status)

	case "tokens":
		if len(args) < 1 {
			log.Fatal("Usage: presencectl tokens <identity>")
		}
		grants, err := client.TokenInbox(args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(grants)

	case "ack":
		if len(args) < 2 {
			log.Fatal("Usage: presencectl ack <identity> <token>")
		}
		if err := client.AckToken(args[0], args[1]); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "get":
		if len(args) < 3 {
			log.Fatal("Usage: presencectl get <identity> <target-identity> <token>")
		}
		presence, err := client.GetPresence(args[0], args[1], args[2])
		if err != nil {
			log.Fatal(err)
		}
		if presence == nil {
			fmt.Println("null")
			return
		}
		printJSON(presence)

	case "profile-set":
		if len(args) < 3 {
			log.Fatal("Usage: presencectl profile-set <identity> <display-name> <handle>")
		}
		if err := client.UpdateProfile(args[0], args[1], args[2], nil); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "profile-get":
		if len(args) < 1 {
			log.Fatal("Usage: presencectl profile-get <identity>")
		}
		profile, err := client.GetProfile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		if profile == nil {
			fmt.Println("null")
			return
		}
		printJSON(profile)

	case "health":
		if err := client.Health(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "update-at":
		// Like update, but with an explicit client timestamp (epoch seconds).
		if len(args) < 3 {
			log.Fatal("Usage: presencectl update-at <identity> <state> <unix-seconds> [device]")
		}
		ts, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			log.Fatal("timestamp must be an integer")
		}
		device := ""
		if len(args) > 3 {
			device = args[3]
		}
		if err := client.UpdatePresence(args[0], args[1], device, &ts); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("presencectl - CLI for the presence relay")
	fmt.Println("\nUsage:")
	fmt.Println("  presencectl update <identity> <state> [device]")
	fmt.Println("  presencectl update-at <identity> <state> <unix-seconds> [device]")
	fmt.Println("  presencectl request <from-identity> <to-identity>")
	fmt.Println("  presencectl inbox <identity>")
	fmt.Println("  presencectl respond <identity> <request-id> allow|deny")
	fmt.Println("  presencectl tokens <identity>")
	fmt.Println("  presencectl ack <identity> <token>")
	fmt.Println("  presencectl get <identity> <target-identity> <token>")
	fmt.Println("  presencectl profile-set <identity> <display-name> <handle>")
	fmt.Println("  presencectl profile-get <identity>")
	fmt.Println("  presencectl health")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  PRESENCE_RELAY_ADDR   Base URL of the relay (default: http://localhost:5000)")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
