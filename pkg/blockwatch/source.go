// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package blockwatch

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
)

// Source answers with the latest finalized block and the balances at it.
type Source interface {
	Latest(ctx context.Context) (events.NewBlock, error)
}

// TransactionSource is implemented by sources that can also list the block
// items of a finalized block.
type TransactionSource interface {
	Transactions(ctx context.Context, height uint64) (events.Transactions, error)
}

const queriesService = "/concordium.v2.Queries/"

const (
	methodConsensusInfo     = queriesService + "GetConsensusInfo"
	methodAccountList       = queriesService + "GetAccountList"
	methodAccountInfo       = queriesService + "GetAccountInfo"
	methodInstanceList      = queriesService + "GetInstanceList"
	methodInstanceInfo      = queriesService + "GetInstanceInfo"
	methodTransactionEvents = queriesService + "GetBlockTransactionEvents"
)

var serverStream = &grpc.StreamDesc{ServerStreams: true}

var errNoFinalizedBlock = errors.New("node has no finalized block yet")

var (
	_ Source            = (*GRPCSource)(nil)
	_ TransactionSource = (*GRPCSource)(nil)
)

// GRPCSource queries the node's gRPC v2 API. The connection is opened on
// first use and kept until Close.
type GRPCSource struct {
	target string
	opts   []grpc.DialOption

	mu   sync.Mutex
	conn *grpc.ClientConn
}

// NewGRPCSource targets host:port, the local node when empty. Without dial
// options the connection is plaintext.
func NewGRPCSource(target string, opts ...grpc.DialOption) *GRPCSource {
	if target == "" {
		target = constants.DefaultNodeGRPCAddr
	}
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	return &GRPCSource{target: target, opts: opts}
}

func (s *GRPCSource) Target() string {
	return s.target
}

func (s *GRPCSource) client() (*grpc.ClientConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	opts := append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(frameCodec{})),
	}, s.opts...)
	conn, err := grpc.NewClient(s.target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed connecting to node at %s: %w", s.target, err)
	}
	s.conn = conn
	return conn, nil
}

func (s *GRPCSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Latest reads the last finalized block with every account balance and
// contract instance at it.
func (s *GRPCSource) Latest(ctx context.Context) (events.NewBlock, error) {
	conn, err := s.client()
	if err != nil {
		return events.NewBlock{}, err
	}
	hash, height, err := lastFinalized(ctx, conn)
	if err != nil {
		return events.NewBlock{}, err
	}
	block := givenBlock(hash)

	amounts, err := accountAmounts(ctx, conn, block)
	if err != nil {
		return events.NewBlock{}, err
	}
	contracts, err := contractInstances(ctx, conn, block)
	if err != nil {
		return events.NewBlock{}, err
	}
	return events.NewBlock{
		Number:    height,
		Hash:      hex.EncodeToString(hash),
		Amounts:   amounts,
		Contracts: contracts,
	}, nil
}

// Transactions lists the block items of the finalized block at height.
func (s *GRPCSource) Transactions(ctx context.Context, height uint64) (events.Transactions, error) {
	conn, err := s.client()
	if err != nil {
		return events.Transactions{}, err
	}
	txs := events.Transactions{Height: height, Items: []events.TransactionSummary{}}
	err = streamCall(ctx, conn, methodTransactionEvents, blockAtHeight(height), func(b []byte) error {
		summary, err := parseBlockItemSummary(b)
		if err != nil {
			return err
		}
		txs.Items = append(txs.Items, summary)
		return nil
	})
	if err != nil {
		return events.Transactions{}, fmt.Errorf("failed fetching transactions of block %d: %w", height, err)
	}
	return txs, nil
}

func lastFinalized(ctx context.Context, conn *grpc.ClientConn) ([]byte, uint64, error) {
	var reply frame
	if err := conn.Invoke(ctx, methodConsensusInfo, &frame{}, &reply); err != nil {
		return nil, 0, fmt.Errorf("failed fetching consensus info: %w", err)
	}
	info, err := parseMessage(reply.b)
	if err != nil {
		return nil, 0, fmt.Errorf("failed decoding consensus info: %w", err)
	}
	hash, err := info.wrappedBytes(6)
	if err != nil {
		return nil, 0, err
	}
	if len(hash) == 0 {
		return nil, 0, errNoFinalizedBlock
	}
	height, err := info.wrappedVarint(8)
	if err != nil {
		return nil, 0, err
	}
	return hash, height, nil
}

func accountAmounts(ctx context.Context, conn *grpc.ClientConn, block []byte) (map[string]string, error) {
	var addresses [][]byte
	err := streamCall(ctx, conn, methodAccountList, block, func(b []byte) error {
		addr, err := parseMessage(b)
		if err != nil {
			return err
		}
		addresses = append(addresses, addr.bytes(1))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed fetching account list: %w", err)
	}

	amounts := make(map[string]string, len(addresses))
	for _, addr := range addresses {
		var reply frame
		if err := conn.Invoke(ctx, methodAccountInfo, &frame{b: accountInfoRequest(block, addr)}, &reply); err != nil {
			return nil, fmt.Errorf("failed fetching account info: %w", err)
		}
		info, err := parseMessage(reply.b)
		if err != nil {
			return nil, fmt.Errorf("failed decoding account info: %w", err)
		}
		amount, err := info.wrappedVarint(2)
		if err != nil {
			return nil, err
		}
		amounts[encodeAddress(addr)] = strconv.FormatUint(amount, 10)
	}
	return amounts, nil
}

type contractAddress struct {
	index    uint64
	subindex uint64
}

func contractInstances(ctx context.Context, conn *grpc.ClientConn, block []byte) (map[string]events.Contract, error) {
	var addresses []contractAddress
	err := streamCall(ctx, conn, methodInstanceList, block, func(b []byte) error {
		addr, err := parseMessage(b)
		if err != nil {
			return err
		}
		addresses = append(addresses, contractAddress{index: addr.varint(1), subindex: addr.varint(2)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed fetching instance list: %w", err)
	}

	contracts := make(map[string]events.Contract, len(addresses))
	for _, addr := range addresses {
		var reply frame
		req := &frame{b: instanceInfoRequest(block, addr.index, addr.subindex)}
		if err := conn.Invoke(ctx, methodInstanceInfo, req, &reply); err != nil {
			return nil, fmt.Errorf("failed fetching instance %d: %w", addr.index, err)
		}
		contract, err := parseInstanceInfo(reply.b)
		if err != nil {
			return nil, fmt.Errorf("failed decoding instance %d: %w", addr.index, err)
		}
		contracts[strconv.FormatUint(addr.index, 10)] = contract
	}
	return contracts, nil
}

// parseInstanceInfo reads either contract version. The fields shown here
// share their numbers across versions.
func parseInstanceInfo(b []byte) (events.Contract, error) {
	info, err := parseMessage(b)
	if err != nil {
		return events.Contract{}, err
	}
	var version protowire.Number = 2
	if info.has(1) {
		version = 1
	}
	v, err := info.sub(version)
	if err != nil {
		return events.Contract{}, err
	}
	owner, err := v.wrappedBytes(2)
	if err != nil {
		return events.Contract{}, err
	}
	amount, err := v.wrappedVarint(3)
	if err != nil {
		return events.Contract{}, err
	}
	name, err := v.wrappedBytes(5)
	if err != nil {
		return events.Contract{}, err
	}
	module, err := v.wrappedBytes(6)
	if err != nil {
		return events.Contract{}, err
	}
	methods := []string{}
	for _, raw := range v.all(4) {
		method, err := parseMessage(raw)
		if err != nil {
			return events.Contract{}, err
		}
		methods = append(methods, string(method.bytes(1)))
	}
	return events.Contract{
		Owner:        encodeAddress(owner),
		Amount:       strconv.FormatUint(amount, 10),
		Name:         string(name),
		SourceModule: hex.EncodeToString(module),
		Methods:      methods,
	}, nil
}

func parseBlockItemSummary(b []byte) (events.TransactionSummary, error) {
	item, err := parseMessage(b)
	if err != nil {
		return events.TransactionSummary{}, err
	}
	index, err := item.wrappedVarint(1)
	if err != nil {
		return events.TransactionSummary{}, err
	}
	energy, err := item.wrappedVarint(2)
	if err != nil {
		return events.TransactionSummary{}, err
	}
	hash, err := item.wrappedBytes(3)
	if err != nil {
		return events.TransactionSummary{}, err
	}
	kind := "unknown"
	switch {
	case item.has(4):
		kind = "account-transaction"
	case item.has(5):
		kind = "account-creation"
	case item.has(6):
		kind = "update"
	}
	return events.TransactionSummary{
		Index:      index,
		Hash:       hex.EncodeToString(hash),
		EnergyCost: energy,
		Kind:       kind,
	}, nil
}

// streamCall sends req on a server streaming method and hands every reply to
// fn until the node closes the stream.
func streamCall(ctx context.Context, conn *grpc.ClientConn, method string, req []byte, fn func([]byte) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := conn.NewStream(ctx, serverStream, method)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&frame{b: req}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		var reply frame
		err := stream.RecvMsg(&reply)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(reply.b); err != nil {
			return err
		}
	}
}
