// Package optimizer computes optimal battery dispatch schedules against a
// known price series by dynamic programming over a discretized state of
// charge lattice. The backward induction yields the value function, the
// forward pass replays the greedy policy into a schedule, and the value
// function gradient yields reservation prices. CalibrateThroughputCost
// searches the throughput cost that hits a target cycle count.
package optimizer
