package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dialspace/dialspace/internal/protocol"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List rooms on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := getRooms(flagServer)
			if err != nil {
				return err
			}

			if len(rooms) == 0 {
				fmt.Println("no rooms")
				return nil
			}

			fmt.Printf("%-16s %-20s %6s %9s %7s\n", "ID", "NAME", "USERS", "CAPACITY", "SIGNAL")
			for _, r := range rooms {
				fmt.Printf("%-16s %-20s %6d %9d %7d\n", r.ID, r.Name, r.Count, r.Capacity, r.Signal)
			}
			return nil
		},
	}
}

func getRooms(base string) ([]protocol.RoomInfo, error) {
	url := strings.TrimRight(base, "/") + "/api/rooms"
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}

	var list struct {
		Rooms []protocol.RoomInfo `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return list.Rooms, nil
}
