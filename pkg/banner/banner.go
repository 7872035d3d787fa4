package banner

import (
	"fmt"

	"relaylog/pkg/config"
)

const banner = `
██████╗ ███████╗██╗      █████╗ ██╗   ██╗██╗      ██████╗  ██████╗
██╔══██╗██╔════╝██║     ██╔══██╗╚██╗ ██╔╝██║     ██╔═══██╗██╔════╝
██████╔╝█████╗  ██║     ███████║ ╚████╔╝ ██║     ██║   ██║██║  ███╗
██╔══██╗██╔══╝  ██║     ██╔══██║  ╚██╔╝  ██║     ██║   ██║██║   ██║
██║  ██║███████╗███████╗██║  ██║   ██║   ███████╗╚██████╔╝╚██████╔╝
╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═╝   ╚═╝   ╚══════╝ ╚═════╝  ╚═════╝
`

// PrintWithEff prints the startup banner with the effective configuration
// summary and the main endpoints.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config sources: %s\n", src)
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST   /v1/messages - Append a message (JSON: sender, text, kind, ts)")
	fmt.Println("GET    /v1/messages?limit=<n>&window=<dur> - Recent messages, coalesced")
	fmt.Println("PATCH  /v1/messages/{id} - Edit message text")
	fmt.Println("DELETE /v1/messages/{id} - Delete one message")
	fmt.Println("POST   /v1/messages/delete - Delete messages by id list")
	fmt.Println("DELETE /v1/messages?sender=<s>|older_than_days=<n> - Filtered delete")
	fmt.Println("GET    /v1/archive?page=<p>&page_size=<n> - Browse archived messages")
	fmt.Println("POST   /v1/admin/compact - Run compaction now")
	fmt.Println("GET    /v1/admin/docs/{kind} - Read admin document")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/messages' -d '{\"sender\":\"alice\",\"text\":\"hello\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/messages?limit=50'\n", addr)
	fmt.Println("\n== Production? =================================================")
	fmt.Println("Set a proper storage path (--db)")
	fmt.Println("Configure API keys (RELAYLOG_API_BACKEND_KEYS) for production use")
}
