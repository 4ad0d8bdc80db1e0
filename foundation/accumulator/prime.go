package accumulator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// The RSA-2048 challenge modulus. Nobody knows its factorization, so the
// order of the multiplicative group is unknown to everyone, including us.
const rsa2048 = "25195908475657893494027183240048398571429282126204" +
	"03202777713783604366202070759555626401852588078440" +
	"69182906412495150821892985591491761845028084891200" +
	"72844992687392807287776735971418347270261896375014" +
	"97182469116507761337985909570009733045974880842840" +
	"17974291006424586918171951187461215151726546322822" +
	"16869987549182422433637259085141865462043576798423" +
	"38718477444792073993423658482382428119816381501067" +
	"48104516603773060562016196762561338441436038339044" +
	"14952634432190114657544454178424020924616515723350" +
	"77870774981712577246796292638635637328991215483143" +
	"81678998850404453640235273819513786365643912120103" +
	"97122822120720357"

var (
	modulus   = mustParseDecimal(rsa2048)
	generator = big.NewInt(2)
	one       = big.NewInt(1)
	two       = big.NewInt(2)
)

// Primality rounds for ProbablyPrime. At 20 rounds the chance of accepting
// a composite is below 2^-40 on top of the deterministic BPSW test.
const primalityRounds = 20

// hashToPrime maps an element to a 128 bit probable prime deterministically.
// Every party in the system must agree on this mapping for proofs to verify.
func hashToPrime[T Hashable](elem T) *big.Int {
	h := crypto.Keccak256(elem.Hash())

	p := new(big.Int).SetBytes(h[:16])
	p.SetBit(p, 0, 1)

	for !p.ProbablyPrime(primalityRounds) {
		p.Add(p, two)
	}

	return p
}

// productOfPrimes maps each element to its prime and returns the product.
// An empty set of elements yields 1, the identity exponent.
func productOfPrimes[T Hashable](elems []T) *big.Int {
	x := big.NewInt(1)
	for _, elem := range elems {
		x.Mul(x, hashToPrime(elem))
	}
	return x
}

func mustParseDecimal(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid modulus literal")
	}
	return v
}
