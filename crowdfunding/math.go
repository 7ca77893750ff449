package crowdfunding

import "math/bits"

// checkedAdd returns a+b or ErrAmountOverflow. Record sums are persisted as
// u64, so wrapping would corrupt the ledger silently.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// checkedSub returns a-b or ErrAmountOverflow when b exceeds a.
func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrAmountOverflow
	}
	return diff, nil
}

// mulDiv computes a*num/denom with floor division and a 128-bit intermediate
// product, so the fee split, referral reward, and liquidation shares never
// overflow mid-computation. The quotient must fit in u64; callers guarantee
// this by keeping num <= denom (fee, referral) or num <= the redistribution
// base (liquidation shares).
func mulDiv(a, num, denom uint64) (uint64, error) {
	if denom == 0 {
		return 0, ErrAmountOverflow
	}
	hi, lo := bits.Mul64(a, num)
	if hi >= denom {
		return 0, ErrAmountOverflow
	}
	quo, _ := bits.Div64(hi, lo, denom)
	return quo, nil
}
