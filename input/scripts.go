// Package input implements the small set of BOLT 3 witness-script
// constructions the watchtower bridge needs in order to describe how a
// tower would spend a revoked commitment's outputs: the to-local
// revocation/delay script and the to-remote (optionally anchor-confirmed)
// script. It intentionally does not implement the rest of a Lightning
// node's script library (HTLC scripts, funding scripts, …) — those belong
// to channel operation, which is out of scope for this bridge.
package input

import (
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcd/txscript"
)

// SigHashAllByte is the sighash-type byte appended to a raw DER signature
// placed on a witness stack.
const SigHashAllByte = txscript.SigHashAll

// CommitScriptToSelf constructs the to-local output script for a
// commitment transaction, per BOLT 3:
//
//	OP_IF
//	    <revocationPubKey>
//	OP_ELSE
//	    <csvDelay>
//	    OP_CHECKSEQUENCEVERIFY
//	    OP_DROP
//	    <delayPubKey>
//	OP_ENDIF
//	OP_CHECKSIG
func CommitScriptToSelf(csvDelay uint32, delayPubKey,
	revocationPubKey *btcec.PublicKey) ([]byte, error) {

	builder := txscript.NewScriptBuilder()

	builder.AddOp(txscript.OP_IF)
	builder.AddData(revocationPubKey.SerializeCompressed())
	builder.AddOp(txscript.OP_ELSE)
	builder.AddInt64(int64(csvDelay))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddData(delayPubKey.SerializeCompressed())
	builder.AddOp(txscript.OP_ENDIF)
	builder.AddOp(txscript.OP_CHECKSIG)

	return builder.Script()
}

// CommitScriptToRemoteConfirmed constructs the to-remote output script
// used by anchor-commitment channels, which requires one confirmation
// before the counterparty's output becomes spendable:
//
//	<remotePubKey> OP_CHECKSIGVERIFY 1 OP_CHECKSEQUENCEVERIFY
func CommitScriptToRemoteConfirmed(remotePubKey *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()

	builder.AddData(remotePubKey.SerializeCompressed())
	builder.AddOp(txscript.OP_CHECKSIGVERIFY)
	builder.AddOp(txscript.OP_1)
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)

	return builder.Script()
}
