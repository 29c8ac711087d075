package domain

import (
	"context"
)

// CloseReason は視聴者接続をこちらから閉じる理由。
type CloseReason uint8

const (
	// CloseHangup は相手が先に切断した。
	CloseHangup CloseReason = iota
	// CloseShutdown はシミュレーションかサーバが止まった。
	CloseShutdown
	// CloseWriteFailed はフレームを送れなかった。
	CloseWriteFailed
)

func (r CloseReason) String() string {
	switch r {
	case CloseHangup:
		return "hangup"
	case CloseShutdown:
		return "shutdown"
	case CloseWriteFailed:
		return "write failed"
	default:
		return "unknown"
	}
}

// Transport は視聴者へフレームを流す片方向のI/O境界です。
type Transport interface {
	// Send はフレームを1つ送る。
	Send(ctx context.Context, frame []byte) error
	// AwaitHangup は相手が切断するまでブロックする。受信したデータは捨てる。
	AwaitHangup(ctx context.Context) error
	Close(reason CloseReason) error
}
