// Command turnover inspects editorial interchange files offline: it parses
// EDL, ALE, sequence XML, FilmScribe, CDL and marker lists, links shots to
// camera-original clips and renders turnover exports. It does not need a
// running agent.
package main
