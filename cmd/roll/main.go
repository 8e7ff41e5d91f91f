// Package main provides a one-shot CLI client for the roll server.
//
// Usage:
//
//	roll [-addr host:port] [-swing 0.5] [-set name] 1000000d6
//	roll -preset d20
//	roll -trials 1000 500d20+500d4
//	roll -list
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	dicev1 "github.com/cory-johannsen/swingdice/internal/gameserver/dicev1"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:50061", "roll server gRPC address")
	swing := flag.Float64("swing", -1, "luck swing in [0, 1]; negative = server or preset default")
	presetID := flag.String("preset", "", "roll a named preset instead of an expression")
	scriptSet := flag.String("set", "", "effect script set")
	trials := flag.Int("trials", 0, "simulate this many rolls instead of rolling once")
	list := flag.Bool("list", false, "list presets and exit")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("connecting to %s: %v", *addr, err)
	}
	defer conn.Close()
	client := dicev1.NewDiceServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *list {
		resp, err := client.ListPresets(ctx, &structpb.Struct{})
		if err != nil {
			log.Fatalf("listing presets: %v", err)
		}
		printPresets(resp)
		return
	}

	req := dicev1.PoolRequest{
		Expression: strings.Join(flag.Args(), "+"),
		Preset:     *presetID,
		ScriptSet:  *scriptSet,
		Trials:     *trials,
	}
	if req.Expression == "" && req.Preset == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *swing >= 0 {
		req.Swing = swing
	}
	payload, err := req.Struct()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *trials > 0 {
		resp, err := client.Simulate(ctx, payload)
		if err != nil {
			log.Fatalf("simulating: %v", err)
		}
		printStats(resp)
		return
	}

	resp, err := client.Roll(ctx, payload)
	if err != nil {
		log.Fatalf("rolling: %v", err)
	}
	printRoll(resp)
}

func printRoll(resp *structpb.Struct) {
	f := resp.GetFields()
	fmt.Printf("%s at swing %.2f\n", f["pool"].GetStringValue(), f["swing"].GetNumberValue())
	fmt.Printf("  sum      %.0f  (range %.0f..%.0f, mean %.1f)\n",
		f["sum"].GetNumberValue(), f["min_sum"].GetNumberValue(), f["max_sum"].GetNumberValue(), f["mean"].GetNumberValue())
	fmt.Printf("  average  %.4f\n", f["average"].GetNumberValue())
	fmt.Printf("  luck     %s: %s\n", f["luck_tier"].GetStringValue(), f["narrative"].GetStringValue())
	if effect := f["effect"].GetStringValue(); effect != "" {
		fmt.Printf("  effect   %s\n", effect)
	}
	fmt.Printf("  roll id  %s\n", f["roll_id"].GetStringValue())
}

func printStats(resp *structpb.Struct) {
	f := resp.GetFields()
	fmt.Printf("%s at swing %.2f, %.0f trials\n", f["pool"].GetStringValue(), f["swing"].GetNumberValue(), f["trials"].GetNumberValue())
	fmt.Printf("  mean average  %.4f (std dev %.4f)\n", f["mean_average"].GetNumberValue(), f["std_dev"].GetNumberValue())
	fmt.Printf("  range         %.4f .. %.4f (spread %.4f)\n",
		f["min_average"].GetNumberValue(), f["max_average"].GetNumberValue(), f["spread"].GetNumberValue())
	fmt.Printf("  p50/p90/p99   %.4f / %.4f / %.4f\n",
		f["p50"].GetNumberValue(), f["p90"].GetNumberValue(), f["p99"].GetNumberValue())

	tiers := f["tiers"].GetStructValue().GetFields()
	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-10s %.0f\n", name, tiers[name].GetNumberValue())
	}
}

func printPresets(resp *structpb.Struct) {
	for _, v := range resp.GetFields()["presets"].GetListValue().GetValues() {
		p := v.GetStructValue().GetFields()
		swing := "default"
		if s, ok := p["swing"]; ok {
			swing = fmt.Sprintf("%.2f", s.GetNumberValue())
		}
		fmt.Printf("%-10s %-20s swing %-7s %s\n",
			p["id"].GetStringValue(), p["pool"].GetStringValue(), swing, p["name"].GetStringValue())
	}
}
