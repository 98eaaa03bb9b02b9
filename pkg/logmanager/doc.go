/*
Package logmanager tracks (term, index) log coordinates in ascending order
and answers the three read-only queries the consensus driver needs:
LastLogIndex, LastLogTerm, CommitLogIndex.
*/
package logmanager
